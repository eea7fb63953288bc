package oracle

import "strings"

const formatPrompt = `I would like you to act as a professional/expert developer and technical architect.
I am about to send you the full codebase of a project. After I do, I will start giving you requests regarding the code, mainly aimed at creating documentation for the codebase.
Every time I request something from you, give me the answer in the format below, even if the requested section does not apply to this codebase, and write nothing before or after it:
---
title: Example Guide
description: A guide in my new Starlight docs site.
---

The page always starts with this block. Do not add a level 1 heading after it; start directly with the content.
If a page is requested in another language, only the values of "title:" and "description:" change language in this block.

Use headings as shown below:
# Heading1
## Heading2
### Heading3
#### Heading4

Bullet points start with "- ". Links are written as [name](link), for example [about reference](https://diataxis.fr/reference/).

Use the Starlight components where they improve clarity, importing them from '@astrojs/starlight/components':
- <Tabs> and <TabItem label="..." icon="..."> for tabbed content; identical syncKey values keep related tabs in sync.
- <Card title="..."> and <CardGrid> for highlighted boxes.
- <LinkCard title="..." description="..." href="..."/> for prominent links.
- <Aside type="note|tip|caution|danger" title="..."> for secondary information.
- <FileTree> with a nested bullet list for directory layouts.
- <Steps> around an ordered list for step-by-step guides.
- <Badge text="..." variant="note|tip|caution|success" size="small|medium|large"/> for short labels.

Make sure to give me the answer in the following format without anything else before or after it:
---
title: Example Guide
description: A guide in my new Starlight docs site.
---
`

func codebasePrompt(codebase string) string {
	return `Here is the entire codebase of the project. Every file is introduced by a "# File: <path>" line.
Keep in mind that I will be sending documentation requests about it next.
Here is the entire codebase:
` + codebase
}

func existingDocsPrompt(project, docs string) string {
	return "Here is the existing documentation for the project '" + project +
		"'. Please use this for context when updating the documentation based on changes:\n\n" + docs
}

func sectionPrompt(subject, language string, update bool) string {
	var b strings.Builder
	b.WriteString("In the format requested previously (even if the section does not apply to this codebase, answer in that format and add no text before or after it) ")
	if update {
		b.WriteString("and based on the changes in the codebase sent, please recreate a documentation document for the following section and its description")
	} else {
		b.WriteString("and based on the codebase sent, please create a documentation document for the following section and its description")
	}
	if language != "" {
		b.WriteString(" in the " + language + " language")
	}
	b.WriteString(":\n")
	b.WriteString(subject)
	b.WriteString("\n")
	return b.String()
}
