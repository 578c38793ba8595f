package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
)

var (
	app     = kingpin.New("wbsctl", "Recalculate, inspect and validate WBS project files")
	noColor = app.Flag("no-color", "Disable colored output").Bool()
	today   = app.Flag("today", "Day used for overdue classification (YYYY-MM-DD)").Default(time.Now().Format("2006-01-02")).String()

	recalcCmd   = app.Command("recalc", "Roll up progress and print the recalculated project")
	recalcFile  = recalcCmd.Arg("file", "Project YAML file").Required().ExistingFile()
	recalcDiff  = recalcCmd.Flag("diff", "Print a unified diff instead of the whole document").Bool()
	recalcWrite = recalcCmd.Flag("write", "Write the result back to the file").Bool()

	flattenCmd  = app.Command("flatten", "Print the visible rows of the task tree")
	flattenFile = flattenCmd.Arg("file", "Project YAML file").Required().ExistingFile()

	ganttCmd   = app.Command("gantt", "Draw the timeline of the visible rows")
	ganttFile  = ganttCmd.Arg("file", "Project YAML file").Required().ExistingFile()
	ganttWidth = ganttCmd.Flag("width", "Chart width in columns").Default("60").Int()
	ganttEdges = ganttCmd.Flag("edges", "Also list dependency edge paths").Bool()

	validateCmd    = app.Command("validate", "Check a project file")
	validateFile   = validateCmd.Arg("file", "Project YAML file").Required().ExistingFile()
	validateStrict = validateCmd.Flag("strict-deps", "Reject dependency cycles").Bool()

	sampleCmd = app.Command("sample", "Print the sample project")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	if *noColor {
		color.NoColor = true
	}

	day, err := time.Parse("2006-01-02", *today)
	if err != nil {
		app.Fatalf("invalid --today %q: %v", *today, err)
	}
	c := &cli{out: os.Stdout, today: day}
	ctx := context.Background()

	switch command {
	case recalcCmd.FullCommand():
		err = c.recalc(ctx, *recalcFile, *recalcDiff, *recalcWrite)
	case flattenCmd.FullCommand():
		err = c.flatten(*flattenFile)
	case ganttCmd.FullCommand():
		err = c.gantt(*ganttFile, *ganttWidth, *ganttEdges)
	case validateCmd.FullCommand():
		err = c.validate(*validateFile, *validateStrict)
	case sampleCmd.FullCommand():
		err = c.sample()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}
