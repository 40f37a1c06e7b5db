package linkgen_test

import (
	"strings"
	"testing"

	"github.com/ejacobg/seqlinks/linkgen"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

var _ = gc.Suite(new(GeneratorSuite))

type GeneratorSuite struct{}

// stubRecord provides canned accessor values for driving the generators.
type stubRecord struct {
	id, title, dbType, whichDB string
}

func (r stubRecord) ID() string      { return r.id }
func (r stubRecord) Title() string   { return r.title }
func (r stubRecord) DBType() string  { return r.dbType }
func (r stubRecord) WhichDB() string { return r.whichDB }
func (r stubRecord) Coordinates() (int, int, int, int) {
	return 0, 0, 0, 0
}

func (s *GeneratorSuite) TestNCBI(c *gc.C) {
	link := linkgen.NCBI(stubRecord{id: "gi|195394571|", dbType: "nucleotide"})
	c.Assert(link, gc.NotNil)
	c.Assert(*link, gc.DeepEquals, linkgen.Link{
		Title: "NCBI",
		URL:   "https://www.ncbi.nlm.nih.gov/nucleotide/195394571",
		Order: 2,
		Icon:  "fa-external-link",
	})
}

func (s *GeneratorSuite) TestNCBIUsesDBType(c *gc.C) {
	link := linkgen.NCBI(stubRecord{id: "gi|12345|", dbType: "protein"})
	c.Assert(link, gc.NotNil)
	c.Assert(link.URL, gc.Equals, "https://www.ncbi.nlm.nih.gov/protein/12345")
}

func (s *GeneratorSuite) TestUniProt(c *gc.C) {
	link := linkgen.UniProt(stubRecord{id: "sp|P12345|SOMEGENE"})
	c.Assert(link, gc.NotNil)
	c.Assert(*link, gc.DeepEquals, linkgen.Link{
		Title: "UniProt",
		URL:   "https://www.uniprot.org/uniprot/P12345",
		Order: 2,
		Icon:  "fa-external-link",
	})
}

func (s *GeneratorSuite) TestPfamFromTitle(c *gc.C) {
	link := linkgen.Pfam(stubRecord{
		id:    "some_hit",
		title: "7 transmembrane receptor PF00001.20 domain",
	})
	c.Assert(link, gc.NotNil)
	c.Assert(*link, gc.DeepEquals, linkgen.Link{
		Title: "Pfam",
		URL:   "https://pfam.xfam.org/family/PF00001.20",
		Order: 2,
		Icon:  "fa-external-link",
	})
}

func (s *GeneratorSuite) TestPfamUnversionedAccession(c *gc.C) {
	link := linkgen.Pfam(stubRecord{id: "PF00042"})
	c.Assert(link, gc.NotNil)
	c.Assert(link.URL, gc.Equals, "https://pfam.xfam.org/family/PF00042")
}

func (s *GeneratorSuite) TestRfam(c *gc.C) {
	link := linkgen.Rfam(stubRecord{id: "RF00001"})
	c.Assert(link, gc.NotNil)
	c.Assert(*link, gc.DeepEquals, linkgen.Link{
		Title: "Rfam",
		URL:   "https://rfam.xfam.org/family/RF00001",
		Order: 2,
		Icon:  "fa-external-link",
	})
}

func (s *GeneratorSuite) TestNoMatchReturnsNil(c *gc.C) {
	rec := stubRecord{id: "random_text", title: "random_text", dbType: "protein"}
	for _, gen := range linkgen.Generators() {
		c.Assert(gen(rec), gc.IsNil)
	}
}

func (s *GeneratorSuite) TestIdentifierTakesPrecedenceOverTitle(c *gc.C) {
	link := linkgen.NCBI(stubRecord{
		id:     "gi|1|",
		title:  "gi|2|",
		dbType: "nucleotide",
	})
	c.Assert(link, gc.NotNil)
	c.Assert(link.URL, gc.Equals, "https://www.ncbi.nlm.nih.gov/nucleotide/1")
}

func (s *GeneratorSuite) TestLeftmostMatchWins(c *gc.C) {
	link := linkgen.Rfam(stubRecord{id: "RF00010 and also RF00020"})
	c.Assert(link, gc.NotNil)
	c.Assert(link.URL, gc.Equals, "https://rfam.xfam.org/family/RF00010")
}

func (s *GeneratorSuite) TestGeneratorsAreIdempotent(c *gc.C) {
	rec := stubRecord{id: "sp|Q9H0H5|RGAP1", title: "Rac GTPase-activating protein 1"}
	first := linkgen.UniProt(rec)
	second := linkgen.UniProt(rec)
	c.Assert(first, gc.NotNil)
	c.Assert(second, gc.NotNil)
	c.Assert(*first, gc.DeepEquals, *second)
}

func (s *GeneratorSuite) TestForRecordCollectsAllMatches(c *gc.C) {
	rec := stubRecord{
		id:     "sp|P68871|HBB_HUMAN",
		title:  "Hemoglobin subunit beta PF00042.17",
		dbType: "protein",
	}
	links := linkgen.ForRecord(rec)
	c.Assert(links, gc.HasLen, 2)
	c.Assert(links[0].Title, gc.Equals, "UniProt")
	c.Assert(links[1].Title, gc.Equals, "Pfam")
}

func (s *GeneratorSuite) TestEscape(c *gc.C) {
	escaped := linkgen.Escape("PF 0001&x")
	for _, unsafe := range []string{" ", "&"} {
		c.Assert(strings.Contains(escaped, unsafe), gc.Equals, false)
	}
	c.Assert(escaped, gc.Equals, "PF+0001%26x")
}
