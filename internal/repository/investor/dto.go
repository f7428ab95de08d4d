package investor

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	dominv "github.com/kailas-cloud/vecdash/internal/domain/investor"
)

// investorDTO is the stored shape of an investor document.
type investorDTO struct {
	ID                any                      `bson:"_id"`
	Investor          string                   `bson:"investor"`
	InvestmentDetails map[string]investmentDTO `bson:"investmentDetails"`
}

type investmentDTO struct {
	CompanyDescription string `bson:"companyDescription"`
}

func (d *investorDTO) toDomain() dominv.Record {
	descriptions := make(map[string]string, len(d.InvestmentDetails))
	for company, inv := range d.InvestmentDetails {
		descriptions[company] = inv.CompanyDescription
	}
	return dominv.New(idString(d.ID), d.Investor, descriptions)
}

// idString renders an _id the way embedding documents reference it.
func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
