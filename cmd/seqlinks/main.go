// Command seqlinks is an offline companion tool for the seqlinks
// monolith. It decorates tabular BLAST output with outbound database
// links without requiring a running server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/ejacobg/seqlinks/blast"
	"github.com/ejacobg/seqlinks/linkgen"
	"github.com/ejacobg/seqlinks/report"
)

func main() {
	app := cli.NewApp()
	app.Name = "seqlinks"
	app.Usage = "generate outbound database links for sequence-search results"
	app.Commands = []cli.Command{
		{
			Name:      "decorate",
			Usage:     "parse tabular BLAST output and emit each hit with its outbound links as JSON",
			ArgsUsage: "[FILE]",
			Action:    decorateAction,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "dbtype",
					Value: "protein",
					Usage: "the NCBI database type to target for gi-style identifiers",
				},
			},
		},
		{
			Name:      "links",
			Usage:     "print the outbound links for a single identifier or title line",
			ArgsUsage: "TEXT",
			Action:    linksAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithField("err", err).Fatal("seqlinks failed")
	}
}

// decoratedHit is the JSON shape emitted by the decorate command.
type decoratedHit struct {
	SeqID    string         `json:"seq_id"`
	Title    string         `json:"title,omitempty"`
	BitScore float64        `json:"bit_score"`
	Links    []linkgen.Link `json:"links,omitempty"`
}

func decorateAction(c *cli.Context) error {
	dbType := c.String("dbtype")
	if dbType != "nucleotide" && dbType != "protein" {
		return fmt.Errorf("dbtype must be either \"nucleotide\" or \"protein\", got %q", dbType)
	}

	in := io.Reader(os.Stdin)
	if c.NArg() > 0 {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	res, err := blast.ParseTabular(in)
	if err != nil {
		return err
	}

	rep := &report.Report{DBType: dbType, QueryID: res.QueryID}

	enc := json.NewEncoder(os.Stdout)
	for i := range res.Hits {
		hit := &res.Hits[i]
		out := decoratedHit{
			SeqID:    hit.SeqID,
			Title:    hit.Title,
			BitScore: hit.BitScore,
			Links:    linkgen.ForRecord(report.HitRecord{Hit: hit, Report: rep}),
		}
		if err = enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func linksAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a sequence identifier or title line is required")
	}
	text := strings.Join(c.Args(), " ")

	rec := report.HitRecord{
		Hit:    &report.Hit{SeqID: text},
		Report: &report.Report{DBType: "protein"},
	}
	links := linkgen.ForRecord(rec)
	if len(links) == 0 {
		return fmt.Errorf("no outbound links matched %q", text)
	}

	for _, link := range links {
		fmt.Printf("%s\t%s\n", link.Title, link.URL)
	}
	return nil
}
