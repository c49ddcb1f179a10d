package model

// Record is one entry of a graph data document:
//
//	{"id": "a", "headline": "A", "links": [{"id": "b", "length": 50}]}
type Record struct {
	ID       string `json:"id" yaml:"id"`
	Headline string `json:"headline" yaml:"headline"`
	Links    []Link `json:"links" yaml:"links"`
}

// Link points from a record to another record id.
type Link struct {
	ID     string  `json:"id" yaml:"id"`
	Length float64 `json:"length" yaml:"length"`
}
