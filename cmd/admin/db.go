package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// tagsCmd dumps tag rows straight from the database. It is safe to run next
// to a live server; the database is opened read-only.
func tagsCmd(args []string) {
	fs := flag.NewFlagSet("tags", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	ref := fs.String("ref", "", "ref prefix filter, e.g. player: or overworld@")
	limit := fs.Int("limit", 200, "result limit")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "tags.sqlite")
	}
	if *limit <= 0 {
		*limit = 200
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT ref, key, value FROM tags WHERE ref LIKE ? ORDER BY ref, key LIMIT ?`, likePrefix(*ref), *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer rows.Close()
	for rows.Next() {
		var r struct {
			Ref   string `json:"ref"`
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		if err := rows.Scan(&r.Ref, &r.Key, &r.Value); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		printJSON(r)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "rows:", err)
		os.Exit(1)
	}
}

func likePrefix(p string) string {
	r := strings.NewReplacer(`%`, `\%`, `_`, `\_`)
	return r.Replace(strings.TrimSpace(p)) + "%"
}
