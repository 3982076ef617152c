package intelligence

import "github.com/alexanderramin/planpilot/internal/llm"

// Every stage schema is object-rooted so chat providers can enforce it
// natively.

var planSchema = llm.Object(map[string]*llm.Schema{
	"summary": llm.String("Two to four sentence overview of the project approach"),
	"phases": llm.Array(llm.Object(map[string]*llm.Schema{
		"name":         llm.String("Phase name"),
		"description":  llm.String("What happens in this phase"),
		"deliverables": llm.Array(llm.String("Concrete deliverable")),
	}, "name", "description", "deliverables")),
}, "summary", "phases")

// wbsNode builds a node schema nested depth levels deep.
func wbsNode(depth int) *llm.Schema {
	props := map[string]*llm.Schema{
		"code":        llm.String("Outline code such as 1.2.3"),
		"name":        llm.String("Work package name"),
		"description": llm.String("Short scope statement"),
	}
	if depth > 1 {
		props["children"] = llm.Array(wbsNode(depth - 1))
	}
	return llm.Object(props, "code", "name")
}

var structureSchema = llm.Object(map[string]*llm.Schema{
	"nodes": llm.Array(wbsNode(3)),
}, "nodes")

var scheduleSchema = llm.Object(map[string]*llm.Schema{
	"tasks": llm.Array(llm.Object(map[string]*llm.Schema{
		"id":           llm.String("Unique task id"),
		"name":         llm.String("Task name"),
		"start":        llm.String("Start date YYYY-MM-DD"),
		"end":          llm.String("End date YYYY-MM-DD"),
		"progress":     llm.Integer("Percent complete 0-100"),
		"type":         llm.Enum("Row type", "project", "task", "milestone"),
		"project":      llm.String("Id of the parent project row, empty for top level"),
		"dependencies": llm.Array(llm.String("Predecessor task id")),
		"cost":         llm.Number("Planned cost in the project currency"),
		"resource":     llm.String("Responsible role or team"),
	}, "id", "name", "start", "end", "progress", "type", "dependencies", "cost")),
}, "tasks")

var budgetSchema = llm.Object(map[string]*llm.Schema{
	"budgetItems": llm.Array(llm.Object(map[string]*llm.Schema{
		"category":           llm.String("Cost category"),
		"description":        llm.String("What the line covers"),
		"laborHours":         llm.Number("Labor hours"),
		"laborCost":          llm.Number("Labor cost"),
		"materialsCost":      llm.Number("Materials cost"),
		"contingencyPercent": llm.Number("Contingency percent on labor and materials"),
	}, "category", "description", "laborHours", "laborCost", "materialsCost", "contingencyPercent")),
}, "budgetItems")

var riskSchema = llm.Object(map[string]*llm.Schema{
	"risks": llm.Array(llm.Object(map[string]*llm.Schema{
		"id":          llm.String("Risk id such as R1"),
		"description": llm.String("Risk event"),
		"category":    llm.String("Risk category"),
		"probability": llm.Enum("Likelihood", "Low", "Medium", "High"),
		"impact":      llm.Enum("Impact", "Low", "Medium", "High"),
		"mitigation":  llm.String("Mitigation plan"),
		"owner":       llm.String("Responsible role"),
	}, "id", "description", "probability", "impact", "mitigation")),
}, "risks")

var narrativeSchema = llm.Object(map[string]*llm.Schema{
	"narrative":       llm.String("Analysis in markdown"),
	"recommendations": llm.Array(llm.String("Actionable recommendation")),
}, "narrative")

var consultingSchema = llm.Object(map[string]*llm.Schema{
	"sections": llm.Array(llm.Object(map[string]*llm.Schema{
		"title":   llm.String("Section title"),
		"content": llm.String("Section body in markdown"),
	}, "title", "content")),
}, "sections")
