package extract

import (
	"context"
	"encoding/json"
	"testing"

	"insightify/internal/model"
	"insightify/internal/source"
	"insightify/internal/tester"
)

func TestPolicies_AssignsTypesAndStatements(t *testing.T) {
	src := source.Parse("doc.md", []byte("Запрещено грубить пользователю.\nВсегда отвечай вежливо.\n"))
	resp := `{"policies":[
		{"type":"must_not","description":"Never be rude to the user.","evidence":[{"input_file":"doc.md","line_start":1,"line_end":1,"quote":"Запрещено грубить пользователю."}]},
		{"type":"style","statement":"Always respond politely","description":"Always respond politely.","evidence":[{"input_file":"doc.md","line_start":2,"line_end":2,"quote":"Всегда отвечай вежливо."}]}
	]}`
	cli := &fakeClient{response: json.RawMessage(resp)}

	pols, err := Policies(context.Background(), cli, src, nil, 2)
	tester.NoErr(t, err)
	tester.Eq(t, len(pols), 2)
	tester.Eq(t, pols[0].ID, "pol_001")
	tester.Eq(t, pols[0].Type, model.PolicyMustNot)
	tester.Eq(t, pols[0].Statement, pols[0].Description, "blank statement should default to description")
	tester.Eq(t, pols[1].Type, model.PolicyStyle)
	tester.Eq(t, pols[1].Statement, "Always respond politely")
}

func TestPolicies_InvalidTypeFallsBackToMust(t *testing.T) {
	src := source.Parse("doc.md", []byte("Some rule.\n"))
	resp := `{"policies":[{"type":"nonsense","description":"Some rule.","evidence":[{"input_file":"doc.md","line_start":1,"line_end":1,"quote":"Some rule."}]}]}`
	cli := &fakeClient{response: json.RawMessage(resp)}

	pols, err := Policies(context.Background(), cli, src, nil, 1)
	tester.NoErr(t, err)
	tester.Eq(t, pols[0].Type, model.PolicyMust)
}
