package config

//go:generate go tool go-enum --marshal --names --nocase

// Specification of XML access layer used to read articles.
// ENUM(etree, xpath)
type XMLBackend int

// Specification of produced document graph representation.
// ENUM(json, tree)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtJson:
		return ".json"
	case OutputFmtTree:
		return ".txt"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
