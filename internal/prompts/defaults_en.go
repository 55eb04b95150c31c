package prompts

// English default templates. v1.0 is the original wording; v1.1 tightens the
// output-format instructions so the labeled score lines are more reliable.

const structureSystemEN = `You are an expert resume reviewer focused on document quality. You evaluate formatting, organization, professional tone and completeness of resumes across all industries. You never judge industry fit, skills relevance or career level.

Your principles:
- Assess the document, not the candidate
- Be specific: cite the exact section or wording behind every issue
- Keep feedback actionable and constructive`

const structureUserENv10 = `Analyze the structure and formatting quality of the resume below.

Score each dimension from 0 to 100 and present them as labeled lines:

FORMAT: <score>
ORGANIZATION: <score>
TONE: <score>
COMPLETENESS: <score>

Then provide feedback lists under these headers, one item per line prefixed with "- ":

STRUCTURE ISSUES
MISSING SECTIONS
TONE PROBLEMS
COMPLETENESS GAPS
STRENGTHS
RECOMMENDATIONS

**Document statistics:**
%s

**Resume:**
-----
%s
-----`

const structureUserENv11 = `Analyze the structure and formatting quality of the resume below.

**Scoring (0-100):** output exactly four labeled lines, nothing else on each line:

FORMAT: <score>
ORGANIZATION: <score>
TONE: <score>
COMPLETENESS: <score>

**Feedback:** after the scores, provide these sections in order. Each section starts with its header on its own line, followed by "- " bullet items. Leave a section empty if nothing applies.

STRUCTURE ISSUES
MISSING SECTIONS
TONE PROBLEMS
COMPLETENESS GAPS
STRENGTHS
RECOMMENDATIONS

Do not add sections beyond these. Do not score industry fit or candidate seniority.

**Document statistics:**
%s

**Resume:**
-----
%s
-----`

const appealSystemEN = `You are an expert career consultant who evaluates how well a resume appeals to hiring managers in a specific target industry. You understand industry-specific hiring criteria, valued skills and seniority signals.

Your principles:
- Evaluate against the stated target industry only
- Ground every judgment in the resume's actual content
- Distinguish directly relevant experience from transferable experience`

const appealUserENv10 = `Evaluate how well the resume below appeals to employers in the %s industry.
%s
Score each dimension from 0 to 100 and present them as labeled lines:

ACHIEVEMENT RELEVANCE: <score>
SKILLS ALIGNMENT: <score>
EXPERIENCE FIT: <score>
COMPETITIVE POSITIONING: <score>

State the candidate's market tier as a labeled line (entry, mid, senior or executive):

MARKET TIER: <tier>

Then provide feedback lists under these headers, one item per line prefixed with "- ":

RELEVANT ACHIEVEMENTS
MISSING SKILLS
TRANSFERABLE EXPERIENCE
INDUSTRY KEYWORDS
COMPETITIVE ADVANTAGES
IMPROVEMENT AREAS

**Resume:**
-----
%s
-----`

const appealUserENv11 = `Evaluate how well the resume below appeals to employers in the %s industry.
%s
**Scoring (0-100):** output exactly four labeled lines, nothing else on each line:

ACHIEVEMENT RELEVANCE: <score>
SKILLS ALIGNMENT: <score>
EXPERIENCE FIT: <score>
COMPETITIVE POSITIONING: <score>

**Market tier:** one labeled line using exactly one of entry, mid, senior, executive:

MARKET TIER: <tier>

**Feedback:** after the scores, provide these sections in order. Each section starts with its header on its own line, followed by "- " bullet items. Leave a section empty if nothing applies.

RELEVANT ACHIEVEMENTS
MISSING SKILLS
TRANSFERABLE EXPERIENCE
INDUSTRY KEYWORDS
COMPETITIVE ADVANTAGES
IMPROVEMENT AREAS

Do not add sections beyond these. Do not re-evaluate formatting quality.

**Resume:**
-----
%s
-----`

func defaultTemplatesEN() []Template {
	return []Template{
		{
			Agent: AgentStructure, Version: VersionV10, Language: "en",
			System: structureSystemEN, User: structureUserENv10, Rules: structureRules(),
		},
		{
			Agent: AgentStructure, Version: VersionV11, Language: "en",
			System: structureSystemEN, User: structureUserENv11, Rules: structureRules(),
		},
		{
			Agent: AgentAppeal, Version: VersionV10, Language: "en",
			System: appealSystemEN, User: appealUserENv10, Rules: appealRules(),
		},
		{
			Agent: AgentAppeal, Version: VersionV11, Language: "en",
			System: appealSystemEN, User: appealUserENv11, Rules: appealRules(),
		},
	}
}
