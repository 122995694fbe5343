// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// cluster-genes clusters genes from one or more genePred tracks into
// groups whose exons transitively overlap, and reports, for each gene in
// each cluster, the other genes of the cluster with which it shares no
// exon or no coding exon.
//
// usage: cluster-genes [options] outputFile database table1 [... tableN]
//
// A table may be a genePred file, optionally gzip compressed, or a table in
// the SQLite database. The database may be a path to an SQLite file, or a
// name resolved to $CLUSTERGENES_DB_DIR/<name>.db, or "no" if all tracks
// are files. CLUSTERGENES_DB_DIR may be set in a .env file in the working
// directory.
//
// The output is a tab-separated table with the columns
//  cluster table gene chrom txStart txEnd strand hasExonConflicts hasCdsConflicts exonConflicts cdsConflicts
// where the conflict columns are comma-terminated lists of track:gene.
package main

import (
	"bufio"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/seq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kortschak/genecluster/cluster"
	"github.com/kortschak/genecluster/genepred"
	"github.com/kortschak/genecluster/internal/logger"
	"github.com/kortschak/genecluster/track"
)

// dbDirEnv is the environment variable naming the database directory.
const dbDirEnv = "CLUSTERGENES_DB_DIR"

type config struct {
	out      string
	database string
	tables   []string

	chroms     []string
	chromFile  string
	cds        bool
	trackNames bool
	required   string

	ignoreStrand bool
	conflicted   bool

	clusterBed  string
	clusterGff  string
	conflictDot string

	work    bool
	workDir string
}

func main() {
	var (
		c     config
		chrom sliceValue
	)
	flag.Var(&chrom, "chrom", "specify a chromosome to cluster (may be present more than once)")
	flag.StringVar(&c.chromFile, "chromFile", "", "specify a file of chromosome names to cluster")
	flag.BoolVar(&c.cds, "cds", false, "specify to cluster on coding exons only")
	flag.BoolVar(&c.trackNames, "trackNames", false, "specify that tables are given as trackName table pairs")
	flag.StringVar(&c.required, "requiredTracks", "", "specify a comma or space separated list of tracks required in output clusters")
	flag.BoolVar(&c.ignoreStrand, "ignoreStrand", false, "specify to cluster genes on both strands together")
	flag.BoolVar(&c.conflicted, "conflicted", false, "specify to output only clusters with conflicts")
	flag.StringVar(&c.clusterBed, "clusterBed", "", "specify file for BED output of cluster spans")
	flag.StringVar(&c.clusterGff, "clusterGff", "", "specify file for GFF output of clusters")
	flag.StringVar(&c.conflictDot, "conflictDot", "", "specify file for DOT output of gene conflicts")
	flag.BoolVar(&c.work, "work", false, "specify to keep the gene spool of file tracks")
	flag.StringVar(&c.workDir, "workDir", "", "specify the directory for the gene spool")
	verbose := flag.Bool("verbose", false, "specify verbose logging")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, `usage: cluster-genes [options] outputFile database table1 [... tableN]`)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 3 {
		flag.Usage()
		os.Exit(2)
	}
	c.out = flag.Arg(0)
	c.database = flag.Arg(1)
	c.tables = flag.Args()[2:]
	c.chroms = chrom

	level := zapcore.InfoLevel
	if *verbose {
		level = zapcore.DebugLevel
	}
	err := logger.Init(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatal("failed to read .env", zap.Error(err))
	}

	logger.Debug("arguments", zap.Strings("args", os.Args))
	err = run(c)
	if err != nil {
		logger.Fatal("cluster-genes failed", zap.Error(err))
	}
}

// run performs the clustering described by c.
func run(c config) error {
	tracks, err := track.Parse(c.tables, c.trackNames, nil)
	if err != nil {
		return err
	}
	err = track.MarkRequired(tracks, c.required)
	if err != nil {
		return err
	}

	var db *sql.DB
	path, err := resolveDB(c.database)
	if err != nil {
		return err
	}
	if path != "" {
		logger.Info("opening database", zap.String("path", path))
		db, err = track.OpenDB(path)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	set, err := track.Open(tracks, db, c.workDir)
	if err != nil {
		return err
	}
	defer func() {
		err := set.Close(c.work)
		if err != nil {
			logger.Warn("failed to close gene spool", zap.Error(err))
		}
	}()
	if c.work && set.SpoolName() != "" {
		logger.Info("keeping gene spool", zap.String("path", set.SpoolName()))
	}

	chroms, err := chromList(c, set)
	if err != nil {
		return err
	}

	out, err := newOutputs(c)
	if err != nil {
		return err
	}
	defer out.close()

	strands := []seq.Strand{seq.Plus, seq.Minus}
	if c.ignoreStrand {
		strands = []seq.Strand{seq.None}
	}
	sel := cluster.NewSelection(tracks, c.conflicted)
	var ids cluster.Numberer
	for _, chrom := range chroms {
		for _, strand := range strands {
			b := cluster.NewBuilder(chrom, strand, c.cds)
			var genes int
			for _, t := range tracks {
				r, err := set.Genes(t, chrom, strand)
				if err != nil {
					return fmt.Errorf("failed to read %s on %s: %w", t.Source, chrom, err)
				}
				n, err := b.AddAll(t, r)
				if err != nil {
					return fmt.Errorf("failed to cluster %s on %s: %w", t.Source, chrom, err)
				}
				genes += n
			}
			clusters := b.Finalize(sel, &ids)
			logger.Debug("clustered",
				zap.String("chrom", chrom),
				zap.Stringer("strand", strandName(strand)),
				zap.Int("genes", genes),
				zap.Int("clusters", len(clusters)),
			)
			for _, cl := range clusters {
				err = out.write(cl)
				if err != nil {
					return err
				}
			}
		}
	}
	return out.finish()
}

type strandName seq.Strand

func (s strandName) String() string {
	if seq.Strand(s) == seq.None {
		return "both"
	}
	return genepred.StrandString(seq.Strand(s))
}

// resolveDB returns the path to the named database. The name "no"
// returns the empty string.
func resolveDB(name string) (string, error) {
	if name == "no" {
		return "", nil
	}
	if fi, err := os.Stat(name); err == nil && fi.Mode().IsRegular() {
		return name, nil
	}
	dir := os.Getenv(dbDirEnv)
	if dir == "" {
		return "", fmt.Errorf("database %s not found and %s is not set", name, dbDirEnv)
	}
	path := filepath.Join(dir, name+".db")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("database %s not found: %w", name, err)
	}
	return path, nil
}

// chromList returns the chromosomes to cluster.
func chromList(c config, set *track.Set) ([]string, error) {
	if len(c.chroms) != 0 {
		return c.chroms, nil
	}
	if c.chromFile != "" {
		f, err := os.Open(c.chromFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readChroms(f)
	}
	return set.Chroms()
}

// readChroms returns the first field of each non-comment line of r.
func readChroms(r io.Reader) ([]string, error) {
	var chroms []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) == 0 || strings.HasPrefix(f[0], "#") {
			continue
		}
		chroms = append(chroms, f[0])
	}
	return chroms, sc.Err()
}

// sliceValue is a multi-value flag value.
type sliceValue []string

// Set adds the string to the sliceValue.
func (s *sliceValue) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// String satisfies the flag.Value interface.
func (s *sliceValue) String() string {
	return fmt.Sprintf("%q", []string(*s))
}
