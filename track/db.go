// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package track

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/biogo/biogo/seq"
	_ "modernc.org/sqlite"

	"github.com/kortschak/genecluster/genepred"
)

// OpenDB opens the SQLite genome annotation database at path.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return db, nil
}

func quote(table string) string {
	return `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
}

// tableExists returns whether the named table is present in db.
func tableExists(db *sql.DB, table string) (bool, error) {
	var n int
	err := db.QueryRow(`select count(*) from sqlite_master where type = 'table' and name = ?`, table).Scan(&n)
	return n != 0, err
}

const geneColumns = `name, chrom, strand, txStart, txEnd, cdsStart, cdsEnd, exonCount, exonStarts, exonEnds`

// tableGenes returns the genes in table on chrom. If strand is seq.None,
// genes on both strands are returned.
func tableGenes(db *sql.DB, table, chrom string, strand seq.Strand) ([]*genepred.Gene, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if strand == seq.None {
		rows, err = db.Query(`select `+geneColumns+` from `+quote(table)+` where chrom = ? order by rowid`, chrom)
	} else {
		rows, err = db.Query(`select `+geneColumns+` from `+quote(table)+` where chrom = ? and strand = ? order by rowid`,
			chrom, genepred.StrandString(strand))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genes []*genepred.Gene
	for rows.Next() {
		var (
			name, chr, str       string
			txStart, txEnd       int
			cdsStart, cdsEnd     int
			exonCount            int
			exonStarts, exonEnds string
		)
		err = rows.Scan(&name, &chr, &str, &txStart, &txEnd, &cdsStart, &cdsEnd, &exonCount, &exonStarts, &exonEnds)
		if err != nil {
			return nil, fmt.Errorf("error in table %s: %w", table, err)
		}
		g, err := genepred.NewGene(name, chr, str, txStart, txEnd, cdsStart, cdsEnd, exonCount, exonStarts, exonEnds)
		if err != nil {
			return nil, fmt.Errorf("error in table %s gene %s: %w", table, name, err)
		}
		genes = append(genes, g)
	}
	return genes, rows.Err()
}

// tableChroms returns the distinct chromosome names in table.
func tableChroms(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(`select distinct chrom from ` + quote(table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var chroms []string
	for rows.Next() {
		var c string
		err = rows.Scan(&c)
		if err != nil {
			return nil, err
		}
		chroms = append(chroms, c)
	}
	return chroms, rows.Err()
}

// CreateTable creates a genePred table in db holding genes.
func CreateTable(db *sql.DB, table string, genes []*genepred.Gene) error {
	_, err := db.Exec(`create table ` + quote(table) + ` (
	name text not null,
	chrom text not null,
	strand text not null,
	txStart integer not null,
	txEnd integer not null,
	cdsStart integer not null,
	cdsEnd integer not null,
	exonCount integer not null,
	exonStarts text not null,
	exonEnds text not null
)`)
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`insert into ` + quote(table) + ` (` + geneColumns + `) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, g := range genes {
		var starts, ends strings.Builder
		for _, e := range g.Exons {
			fmt.Fprintf(&starts, "%d,", e.Start)
			fmt.Fprintf(&ends, "%d,", e.End)
		}
		_, err = stmt.Exec(g.Name, g.Chrom, genepred.StrandString(g.Strand),
			g.TxStart, g.TxEnd, g.CdsStart, g.CdsEnd, len(g.Exons), starts.String(), ends.String())
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
