// Package dataset serializes catalog record sets as compressed snapshot
// files, one JSON document per line inside a gzip stream. Snapshots are the
// interchange format for moving a catalog between hosts and for archiving
// point-in-time copies.
package dataset

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"repocat/internal/model"
)

// Ext is the snapshot file extension.
const Ext = ".jsonl.gz"

// Save writes records to w as a compressed snapshot.
func Save(w io.Writer, recs []*model.Record) error {
	zw := gzip.NewWriter(w)
	enc := json.NewEncoder(zw)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding record #%d: %w", r.ID, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing snapshot: %w", err)
	}
	return nil
}

// Load reads a compressed snapshot back into records, in file order.
func Load(r io.Reader) ([]*model.Record, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer zr.Close()

	var recs []*model.Record
	dec := json.NewDecoder(zr)
	for {
		var rec model.Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return recs, nil
			}
			return nil, fmt.Errorf("decoding snapshot record: %w", err)
		}
		recs = append(recs, &rec)
	}
}
