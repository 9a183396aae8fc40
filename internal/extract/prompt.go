package extract

const extractionPrompt = `请从下面的用户输入中提取所有与申请者画像相关的信息，以JSON格式返回（只包含有提及的字段）：

可能的字段包括：
- 基本信息：gpa、school、gre、toefl、ielts、major、degree（最高学位，如本科、硕士、博士等）
- 科研经历：research（数组）、if_research（是否已了解科研情况）
- 申请目标：target_major、target_country
- 地区偏好：region（目标地区列表，如["美国", "英国", "新加坡"]）
- 院校偏好：preferred_universities（偏好大学列表）
- 预算要求：budget_min（最小预算）、budget_max（最大预算）（返回的值请均以元为单位展开，如40万->400000）
- 排名要求：rank_max（最大排名要求，数字越小排名越高）
- 背景评级：background_institution_rating（背景院校评级，如"985"、"211"、"双非"等，这里请你通过提供的背景院校和你的知识推断。）
- 经历背景：work_experience（工作经历数组）、extracurricular（课外活动数组）

特别注意：
1. 如果用户明确说自己没有科研经历，请把if_research设置为true（表示已经了解过用户的科研情况）
2. 预算单位请统一为人民币（元）
3. 地区和大学名称请使用中文
4. 请返回扁平的JSON格式，不要嵌套分类
5. 用户输入的专业可能会比较多样，请你根据用户的输入，将major和target_major的输出限制在以下几类：“农业与林业”，“应用科学与职业”，“艺术、设计与建筑”，“商业与管理”，“计算机科学与信息技术”，“教育与培训”，“工程与技术”，“环境研究与地球科学”，“酒店、休闲与体育”，“人文学科”，“新闻与媒体”，“法律”，“医学与健康”，“自然科学与数学”，“社会科学”

示例输出格式：
{
    "gpa": 3.5,
    "school": "中山大学",
    "major": "计算机科学与信息技术",
    "degree": "硕士",
    "budget_max": 400000,
    "rank_max": 50,
    "region": ["美国"],
    "preferred_universities": ["哥伦比亚大学"]
}

请只返回JSON格式，不要其他内容。`
