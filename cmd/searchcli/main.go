// Package main provides a resolver/selector debugging CLI.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/osa030/ouchibox/internal/app/resolver"
	"github.com/osa030/ouchibox/internal/app/selector"
	"github.com/osa030/ouchibox/internal/domain/catalog"
	"github.com/osa030/ouchibox/internal/domain/yomi"
)

var (
	app         = kingpin.New("ouchibox-searchcli", "ouchibox catalog search client for testing")
	catalogPath = app.Flag("catalog", "Path to catalog file").Default("data/catalog.json").String()

	// resolve command
	resolveCmd  = app.Command("resolve", "Resolve a name against one entity type")
	resolveType = resolveCmd.Arg("type", "Entity type (artist|album|title)").Required().Enum("artist", "album", "title")
	resolveName = resolveCmd.Arg("name", "Name to resolve").Required().String()
	resolveAll  = resolveCmd.Flag("all", "List all candidates").Bool()

	// select command
	selectCmd  = app.Command("select", "Pick a playback interpretation from hints")
	artistID   = selectCmd.Flag("artist-id", "Artist id hint").String()
	artistName = selectCmd.Flag("artist-name", "Artist name hint").String()
	albumID    = selectCmd.Flag("album-id", "Album id hint").String()
	albumName  = selectCmd.Flag("album-name", "Album name hint").String()
	titleID    = selectCmd.Flag("title-id", "Title id hint").String()
	titleName  = selectCmd.Flag("title-name", "Title name hint").String()

	// normalize command
	normalizeCmd  = app.Command("normalize", "Print the phonetic key for a string")
	normalizeText = normalizeCmd.Arg("text", "Text to normalize").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == normalizeCmd.FullCommand() {
		fmt.Println(yomi.Normalize(*normalizeText))
		return
	}

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	res := resolver.New(cat)

	switch command {
	case resolveCmd.FullCommand():
		runResolve(cat, res)
	case selectCmd.FullCommand():
		runSelect(cat, res)
	}
}

func runResolve(cat *catalog.Catalog, res *resolver.Resolver) {
	t := catalog.EntityType(*resolveType)
	if *resolveAll {
		ids := res.ResolveAll(t, *resolveName, resolver.TierSubstring)
		if len(ids) == 0 {
			fmt.Println("No match")
			os.Exit(1)
		}
		for _, id := range ids {
			ent, _ := cat.Entity(t, id)
			fmt.Printf("%s\t%s\n", id, ent.Name)
		}
		return
	}
	id, ok := res.Resolve(t, *resolveName, resolver.TierSubstring)
	if !ok {
		fmt.Println("No match")
		os.Exit(1)
	}
	ent, _ := cat.Entity(t, id)
	fmt.Printf("%s\t%s\n", id, ent.Name)
}

func runSelect(cat *catalog.Catalog, res *resolver.Resolver) {
	sel := selector.New(cat, res, nil)
	interp, err := sel.Select(
		hintList(*artistID, *artistName),
		hintList(*albumID, *albumName),
		hintList(*titleID, *titleName),
	)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	ent, _ := cat.Entity(interp.Type, interp.ID)
	fmt.Printf("type=%s id=%s reliability=%d name=%s\n", interp.Type, interp.ID, interp.Reliability, ent.Name)

	q, err := sel.Expand(interp)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for i, id := range q.TrackIDs {
		title, _ := cat.Title(id)
		fmt.Printf("%2d. %s\t%s\n", i+1, id, title.Name)
	}
}

func hintList(id, name string) []selector.Hint {
	if id == "" && name == "" {
		return nil
	}
	return []selector.Hint{{ID: id, Name: name}}
}
