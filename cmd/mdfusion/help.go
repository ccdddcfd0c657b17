package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdfusion [flags] [root_dir] [-- pandoc args...]")
	fmt.Fprintln(w, "       mdfusion <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Merge every Markdown file under root_dir into one PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  doctor     Check pandoc, XeLaTeX and the browser")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdfusion --help' for the merge flags.")
}

// printFuseUsage prints usage for the merge command.
func printFuseUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdfusion [flags] [root_dir] [-- pandoc args...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Merge every .md file under root_dir (default: config directory or the")
	fmt.Fprintln(w, "current directory), in natural order, into one PDF via pandoc and XeLaTeX.")
	fmt.Fprintln(w, "Arguments after -- are passed to pandoc unchanged.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>          Output file (default: <root>/<root name>.pdf)")
	fmt.Fprintln(w, "  -c, --config <path>          Config file (default: mdfusion.toml, mdfusion.yaml)")
	fmt.Fprintln(w, "      --merged-md <dir>        Keep merged.md in this directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Title page:")
	fmt.Fprintln(w, "      --title-page             Add a title page")
	fmt.Fprintln(w, "      --title <s>              Title (default: root directory name)")
	fmt.Fprintln(w, "      --author <s>             Author (default: current user)")
	fmt.Fprintln(w, "      --date <s>               Date (default: today, YYYY-MM-DD)")
	fmt.Fprintln(w, "                               auto, auto:FORMAT or auto:iso|european|us|long")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pandoc:")
	fmt.Fprintln(w, "      --toc                    Add a table of contents")
	fmt.Fprintln(w, "      --header-tex <path>      LaTeX appended to the preamble (default: ./header.tex)")
	fmt.Fprintln(w, "      --pandoc-args <s>        Extra pandoc arguments, whitespace separated")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Content:")
	fmt.Fprintln(w, "      --remove-alt-texts <a,b> Image alt texts to clear (default: \"alt text\")")
	fmt.Fprintln(w, "      --strip-front-matter     Drop per-file front matter, keep title/author/date")
	fmt.Fprintln(w, "      --strict-images          Fail when a local image is missing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Presentation:")
	fmt.Fprintln(w, "      --presentation           Build a reveal.js deck (.html) and print it to PDF")
	fmt.Fprintln(w, "      --footer-text <s>        Footer shown on every slide")
	fmt.Fprintln(w, "      --animate-all-lines      Reveal slide content one element at a time")
	fmt.Fprintln(w, "      --chromium-path <path>   Browser used for printing")
	fmt.Fprintln(w, "      --timeout <duration>     Printing timeout (default: 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                  Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                Show progress and pandoc output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDFUSION_CONFIG, MDFUSION_ROOT_DIR, MDFUSION_OUTPUT, MDFUSION_TITLE,")
	fmt.Fprintln(w, "  MDFUSION_AUTHOR, MDFUSION_DATE, MDFUSION_HEADER_TEX, MDFUSION_PANDOC_ARGS,")
	fmt.Fprintln(w, "  MDFUSION_FOOTER_TEXT, MDFUSION_CHROMIUM_PATH, MDFUSION_TIMEOUT")
	fmt.Fprintln(w, "  A .env file in the current directory is loaded first.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "merge":
		printFuseUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: mdfusion doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that pandoc, XeLaTeX and a browser are available.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdfusion version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdfusion help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
