// Package report turns raw vector search hits and their joined investor
// records into the tables shown on the dashboard.
package report

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/vecdash/internal/domain"
	"github.com/kailas-cloud/vecdash/internal/domain/investor"
	"github.com/kailas-cloud/vecdash/internal/domain/search/hit"
)

// CompanyRow is one line of the companies table.
type CompanyRow struct {
	Index       int      `json:"index"`
	Name        string   `json:"company_name"`
	Score       float64  `json:"score"`
	Description string   `json:"company_description"`
	Investors   []string `json:"investor_names"`
}

// InvestorNames returns the investors of the row as a single display string.
func (r CompanyRow) InvestorNames() string {
	return strings.Join(r.Investors, ", ")
}

// InvestorCount is one line of the investors table.
type InvestorCount struct {
	Index int    `json:"index"`
	Name  string `json:"investor_name"`
	Count int    `json:"count"`
}

// Report holds both dashboard tables for a single query.
type Report struct {
	Hits      int             `json:"hits"`
	Companies []CompanyRow    `json:"companies"`
	Investors []InvestorCount `json:"investors"`

	// MissingDescriptions lists companies whose joined record has no
	// portfolio entry for them; their rows show an empty description.
	MissingDescriptions []string `json:"-"`
}

// Empty returns a report with no rows.
func Empty() Report {
	return Report{Companies: []CompanyRow{}, Investors: []InvestorCount{}}
}

// IsEmpty reports whether the query matched nothing.
func (r Report) IsEmpty() bool { return len(r.Companies) == 0 }

// Build aggregates hits by company name in encounter order.
//
// The first hit of a company fixes its score and description; every hit
// (including repeats) appends its investor name to the row and bumps that
// investor's count. Row indices start at 1.
// A hit without a joined record fails the whole report.
func Build(hits []hit.Hit, records map[string]investor.Record) (Report, error) {
	rep := Empty()
	rep.Hits = len(hits)

	companyPos := make(map[string]int, len(hits))
	investorPos := make(map[string]int)

	for i := range hits {
		h := &hits[i]

		rec, ok := records[h.DocumentID()]
		if !ok {
			return Report{}, fmt.Errorf("%w: id %s (company %q)",
				domain.ErrRecordNotFound, h.DocumentID(), h.Name())
		}

		pos, seen := companyPos[h.Name()]
		if !seen {
			desc, ok := rec.Description(h.Name())
			if !ok {
				rep.MissingDescriptions = append(rep.MissingDescriptions, h.Name())
			}
			rep.Companies = append(rep.Companies, CompanyRow{
				Index:       len(rep.Companies) + 1,
				Name:        h.Name(),
				Score:       h.Score(),
				Description: desc,
				Investors:   []string{},
			})
			pos = len(rep.Companies) - 1
			companyPos[h.Name()] = pos
		}
		rep.Companies[pos].Investors = append(rep.Companies[pos].Investors, rec.Name())

		ipos, seen := investorPos[rec.Name()]
		if !seen {
			rep.Investors = append(rep.Investors, InvestorCount{
				Index: len(rep.Investors) + 1,
				Name:  rec.Name(),
			})
			ipos = len(rep.Investors) - 1
			investorPos[rec.Name()] = ipos
		}
		rep.Investors[ipos].Count++
	}

	return rep, nil
}
