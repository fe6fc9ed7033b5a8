// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt holds the fixed instruction templates sent to the models.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// plannerPreamble frames every instruction around the user input.
const plannerPreamble = `You are a research planner.

You are working on a project that aims to answer user's questions
using sources found online.

Your answer MUST be technical, using up to date information.
Cite facts, data and specific informations.

Here's the user input
<USER_INPUT>
{{.Input}}
</USER_INPUT>
`

var queriesTmpl = template.Must(template.New("queries").Parse(plannerPreamble + `
Your first objective is to build a list of queries
that will be used to find answers to the user's question.

Answer with anything between 3-5 queries.

Respond with a JSON object containing a "queries" array of strings, in the
order they should be searched. Do not include any text outside the JSON object.

Example response:
{"queries": ["first query", "second query", "third query"]}
`))

var summaryTmpl = template.Must(template.New("summary").Parse(plannerPreamble + `
Your objective here is to analyze the web search results and make a synthesis of it,
emphasizing only what is relevant to the user's question.

After your work, another agent will use the synthesis to build a final response to the user, so
make sure the synthesis contains only useful information.
Be concise and clear.

Here's the web search results:
<SEARCH_RESULTS>
{{.Results}}
</SEARCH_RESULTS>
`))

var finalReportTmpl = template.Must(template.New("final").Parse(plannerPreamble + `
Your objective here is develop a final response to the user using
the reports made during the web search, with their synthesis.

The response should contain something between 500 - 800 words.

Here's the web search results:
<SEARCH_RESULTS>
{{.Results}}
</SEARCH_RESULTS>

You must add reference citations (with the number of the citation, example: [1]) for the
articles you used in each paragraph of your answer.
`))

type data struct {
	Input   string
	Results string
}

// Queries builds the planner instruction for topic.
func Queries(topic string) (string, error) {
	return execute(queriesTmpl, data{Input: topic})
}

// Summary builds the per-page synthesis instruction for one query and the
// page content found for it.
func Summary(query, content string) (string, error) {
	return execute(summaryTmpl, data{Input: query, Results: content})
}

// FinalReport builds the report instruction for topic over the numbered
// context block.
func FinalReport(topic, contextBlock string) (string, error) {
	return execute(finalReportTmpl, data{Input: topic, Results: contextBlock})
}

func execute(t *template.Template, d data) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("executing %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}
