// Package export writes the canonical catalog as a delimited flat
// file for downstream spreadsheet or pipeline consumption.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/modelscout/modelscout/pkg/catalog"
)

// Columns is the fixed export column order.
var Columns = []string{
	"name", "model_id", "canonical_model_id", "publisher", "category",
	"source", "hub_id", "router_id", "downloads", "likes",
	"short_description", "hub_url", "router_url", "library_url", "tags",
}

// WriteCSV writes records in the fixed column order. Values
// containing delimiters or quotes are double-quote escaped by the
// encoder; tags are joined by semicolons.
func WriteCSV(w io.Writer, records []catalog.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range records {
		if err := cw.Write(row(&records[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(r *catalog.Record) []string {
	return []string{
		r.Name,
		r.ModelID,
		r.CanonicalID,
		r.Publisher,
		r.Category,
		string(r.Source),
		r.HubID,
		r.RouterID,
		strconv.FormatInt(r.Downloads, 10),
		strconv.FormatInt(r.Likes, 10),
		r.ShortDescription,
		r.HubURL,
		r.RouterURL,
		r.LibraryURL,
		strings.Join(r.Tags, ";"),
	}
}
