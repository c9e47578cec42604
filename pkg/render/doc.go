// Package render turns node configurations and data bags into view models.
//
// A BaseNode renders any node kind described by a nodetype.Config. A
// TemplateNode renders the text node, whose input handles are derived from
// the {{placeholders}} in its text. Both keep per-field working values that
// are seeded once at mount and report edits through a FieldChangeFunc.
//
// Views carry no presentation technology; the HTTP API serializes them as
// JSON and the terminal renderer prints them as cards.
package render
