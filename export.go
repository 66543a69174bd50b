package chatflow

import (
	"encoding/json"
	"io"
	"time"
)

// DocumentVersion is the version tag written into every exported document.
const DocumentVersion = "1.0.0"

// createdLayout is ISO-8601 in UTC with millisecond precision.
const createdLayout = "2006-01-02T15:04:05.000Z"

// Document is the exported form of a valid flow.
type Document struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Metadata Metadata `json:"metadata"`
}

type Metadata struct {
	Created   string `json:"created"`
	Version   string `json:"version"`
	NodeCount int    `json:"nodeCount"`
	EdgeCount int    `json:"edgeCount"`
}

// Export validates f and, only if it passes, returns the document for it
// stamped with now. An invalid flow yields an *InvalidFlowError holding the
// full report and no document.
func Export(f Flow, now time.Time) (*Document, error) {
	report := Validate(f)
	if !report.IsValid {
		return nil, &InvalidFlowError{Report: report}
	}
	c := f.Clone()
	return &Document{
		Nodes: c.Nodes,
		Edges: c.Edges,
		Metadata: Metadata{
			Created:   now.UTC().Format(createdLayout),
			Version:   DocumentVersion,
			NodeCount: len(c.Nodes),
			EdgeCount: len(c.Edges),
		},
	}, nil
}

// FileName returns the download name for a document exported at t.
func FileName(t time.Time) string {
	return "chatbot-flow-" + t.UTC().Format(time.DateOnly) + ".json"
}

// FileName returns the download name matching the document's created
// stamp, so the date in the name and in the metadata always agree.
func (d *Document) FileName() string {
	created, err := time.Parse(createdLayout, d.Metadata.Created)
	if err != nil {
		return FileName(time.Now())
	}
	return FileName(created)
}

// Encode writes the document as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Flow returns the graph held by the document.
func (d *Document) Flow() Flow {
	return Flow{Nodes: d.Nodes, Edges: d.Edges}.Clone()
}
