// Package linkgen produces outbound reference links for sequence-search
// hits. Each generator recognizes the identifiers of one external database
// inside a hit's identifier line or title and formats a link to it.
package linkgen

import (
	"net/url"
	"regexp"
	"sort"
)

// The sort tier shared by all reference-database links.
const orderDatabase = 2

// The icon attached to every outbound link.
const iconExternalLink = "fa-external-link"

var (
	// Extract the numeric GenInfo identifier from NCBI-style identifier
	// lines. (eg. "gi|195394571|")
	ncbiRegex = regexp.MustCompile(`gi\|(\d+)\|`)

	// Extract the accession from UniProtKB/Swiss-Prot identifier lines.
	// (eg. "sp|P12345|CYC_HUMAN")
	uniprotRegex = regexp.MustCompile(`sp\|(\w+)\|`)

	// Extract a Pfam family accession with an optional version suffix.
	// (eg. "PF00001.20")
	pfamRegex = regexp.MustCompile(`(PF\d{5}\.?\d*)`)

	// Extract an Rfam family accession. (eg. "RF00001")
	rfamRegex = regexp.MustCompile(`(RF\d{5})`)
)

// Link encapsulates all information about a single outbound reference link
// attached to a search hit.
type Link struct {
	// The display name of the target database.
	Title string `json:"title"`

	// The fully formed, percent-escaped URL of the target record.
	URL string `json:"url"`

	// A sort position hint for rendering multiple links on one hit.
	// A zero value indicates no preference.
	Order int `json:"order,omitempty"`

	// An optional whitespace-separated list of presentation tags.
	Class string `json:"class,omitempty"`

	// An optional identifier of a presentation icon.
	Icon string `json:"icon,omitempty"`
}

// Record is implemented by hit objects that the link generators can
// decorate. All accessors are read-only; generators never mutate the
// underlying hit.
type Record interface {
	// ID returns the raw identifier line of the hit.
	ID() string

	// Title returns the descriptive title of the hit.
	Title() string

	// DBType returns the alphabet of the searched database, either
	// "nucleotide" or "protein".
	DBType() string

	// WhichDB returns the name of the database the hit came from.
	// The built-in generators do not consume it but generators for
	// coordinate-aware browsers do.
	WhichDB() string

	// Coordinates returns the alignment extents of the hit on the query
	// and hit sequences.
	Coordinates() (queryStart, queryEnd, hitStart, hitEnd int)
}

// Generator inspects a hit record and either returns a link for the
// database it recognizes identifiers of, or nil when the record carries no
// such identifier. Generators are pure and safe for concurrent use.
type Generator func(Record) *Link

// Generators returns the full set of registered link generators.
func Generators() []Generator {
	return []Generator{NCBI, UniProt, Pfam, Rfam}
}

// ForRecord applies every registered generator to r and returns the links
// produced, sorted by their order hint.
func ForRecord(r Record) []Link {
	return Apply(Generators(), r)
}

// Apply runs each of the provided generators against r and returns the
// links produced, sorted by their order hint.
func Apply(gens []Generator, r Record) []Link {
	var links []Link
	for _, gen := range gens {
		if link := gen(r); link != nil {
			links = append(links, *link)
		}
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].Order < links[j].Order })
	return links
}

// NCBI generates a link to the NCBI nucleotide or protein database for hits
// carrying a GenInfo identifier.
func NCBI(r Record) *Link {
	gi, ok := match(ncbiRegex, r)
	if !ok {
		return nil
	}
	return &Link{
		Title: "NCBI",
		URL:   "https://www.ncbi.nlm.nih.gov/" + r.DBType() + "/" + Escape(gi),
		Order: orderDatabase,
		Icon:  iconExternalLink,
	}
}

// UniProt generates a link to UniProtKB for hits carrying a Swiss-Prot
// accession.
func UniProt(r Record) *Link {
	accession, ok := match(uniprotRegex, r)
	if !ok {
		return nil
	}
	return &Link{
		Title: "UniProt",
		URL:   "https://www.uniprot.org/uniprot/" + Escape(accession),
		Order: orderDatabase,
		Icon:  iconExternalLink,
	}
}

// Pfam generates a link to the Pfam family page for hits carrying a Pfam
// accession.
func Pfam(r Record) *Link {
	accession, ok := match(pfamRegex, r)
	if !ok {
		return nil
	}
	return &Link{
		Title: "Pfam",
		URL:   "https://pfam.xfam.org/family/" + Escape(accession),
		Order: orderDatabase,
		Icon:  iconExternalLink,
	}
}

// Rfam generates a link to the Rfam family page for hits carrying an Rfam
// accession.
func Rfam(r Record) *Link {
	accession, ok := match(rfamRegex, r)
	if !ok {
		return nil
	}
	return &Link{
		Title: "Rfam",
		URL:   "https://rfam.xfam.org/family/" + Escape(accession),
		Order: orderDatabase,
		Icon:  iconExternalLink,
	}
}

// Escape percent-encodes a raw identifier so it can be safely interpolated
// into a URL template as a path or query segment. Only the identifier is
// escaped; the fixed template characters are left untouched.
func Escape(rawID string) string {
	return url.QueryEscape(rawID)
}

// match applies re to the hit identifier line and falls back to the title.
// The leftmost match wins and the identifier line takes precedence: the
// title is not consulted once the identifier matches.
func match(re *regexp.Regexp, r Record) (string, bool) {
	if m := re.FindStringSubmatch(r.ID()); m != nil {
		return m[1], true
	}
	if m := re.FindStringSubmatch(r.Title()); m != nil {
		return m[1], true
	}
	return "", false
}
