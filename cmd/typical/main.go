package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	typical "github.com/ducminhgd/typical"
	"github.com/ducminhgd/typical/descriptor"
	"github.com/ducminhgd/typical/i18n"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "transmute":
		transmuteCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	case "schema":
		schemaCmd(os.Args[2:])
	case "describe":
		describeCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "typical CLI\n\nUsage:\n  typical transmute -type Name -types desc.yaml [-config typical.toml] [input.json]\n  typical validate  -type Name -types desc.yaml [-strict] [input.json]\n  typical schema    -type Name -types desc.yaml\n  typical describe  -type Name -types desc.yaml\n\nNotes:\n  - Input is read from the named file or stdin.\n  - Descriptor documents declare the named types referenced by -type.")
}

type toolFlags struct {
	typeName string
	typesDoc string
	config   string
	strict   bool
	verbose  bool
}

func bindFlags(fs *flag.FlagSet) *toolFlags {
	tf := &toolFlags{}
	fs.StringVar(&tf.typeName, "type", "", "name of the described type to resolve")
	fs.StringVar(&tf.typesDoc, "types", "", "descriptor document (YAML)")
	fs.StringVar(&tf.config, "config", "", "tool configuration (TOML)")
	fs.BoolVar(&tf.strict, "strict", false, "validate instead of coercing")
	fs.BoolVar(&tf.verbose, "v", false, "debug logging")
	return tf
}

// setup builds a resolver from the flags: configuration first, descriptor
// documents registered, strictness applied.
func setup(tf *toolFlags) (*typical.Resolver, descriptor.Config, zerolog.Logger, error) {
	cfg := descriptor.DefaultConfig()
	if tf.config != "" {
		var err error
		cfg, err = descriptor.LoadConfig(tf.config)
		if err != nil {
			return nil, cfg, zerolog.Nop(), err
		}
	}
	level := zerolog.InfoLevel
	if tf.verbose || cfg.LogLevel == "debug" {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	if cfg.Language != "" {
		i18n.SetLanguage(cfg.Language)
	}

	opts := []typical.Option{typical.WithLogger(log)}
	if tf.strict || cfg.Strict {
		opts = append(opts, typical.WithStrict())
	}
	r := typical.NewResolver(opts...)

	docs := cfg.Descriptors
	if tf.typesDoc != "" {
		docs = append(docs, tf.typesDoc)
	}
	for _, path := range docs {
		f, err := os.Open(path)
		if err != nil {
			return nil, cfg, log, err
		}
		err = descriptor.RegisterAll(r.Registry(), f)
		f.Close()
		if err != nil {
			return nil, cfg, log, err
		}
		log.Debug().Str("doc", path).Msg("registered descriptor document")
	}
	return r, cfg, log, nil
}

func resolveNamed(r *typical.Resolver, cfg descriptor.Config, name string) (typical.Protocol, error) {
	t, ok := r.Registry().Lookup(name)
	if !ok {
		return nil, fmt.Errorf("type %q is not registered; list it in a descriptor document", name)
	}
	var opts []typical.ResolveOption
	if c := typical.CaseFromString(cfg.Case); c != typical.CaseUnchanged {
		opts = append(opts, typical.WithFlags(typical.SerdeFlags{Case: c}))
	}
	return r.Resolve(t, opts...)
}

func readInput(fs *flag.FlagSet) ([]byte, error) {
	if fs.NArg() > 0 {
		return os.ReadFile(fs.Arg(0))
	}
	return io.ReadAll(os.Stdin)
}

func transmuteCmd(args []string) {
	fs := flag.NewFlagSet("transmute", flag.ExitOnError)
	tf := bindFlags(fs)
	_ = fs.Parse(args)
	requireType(fs, tf)
	r, cfg, log, err := setup(tf)
	fatalOn(log, err)
	p, err := resolveNamed(r, cfg, tf.typeName)
	fatalOn(log, err)
	data, err := readInput(fs)
	fatalOn(log, err)
	var raw any
	fatalOn(log, json.Unmarshal(data, &raw))
	out, err := p.Transmute(raw)
	fatalOn(log, err)
	printJSON(out)
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	tf := bindFlags(fs)
	_ = fs.Parse(args)
	requireType(fs, tf)
	r, cfg, log, err := setup(tf)
	fatalOn(log, err)
	p, err := resolveNamed(r, cfg, tf.typeName)
	fatalOn(log, err)
	data, err := readInput(fs)
	fatalOn(log, err)
	var raw any
	fatalOn(log, json.Unmarshal(data, &raw))
	if _, err := p.Validate(raw); err != nil {
		reportIssues(err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

func schemaCmd(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	tf := bindFlags(fs)
	_ = fs.Parse(args)
	requireType(fs, tf)
	r, cfg, log, err := setup(tf)
	fatalOn(log, err)
	p, err := resolveNamed(r, cfg, tf.typeName)
	fatalOn(log, err)
	printJSON(p.Schema())
}

func describeCmd(args []string) {
	fs := flag.NewFlagSet("describe", flag.ExitOnError)
	tf := bindFlags(fs)
	_ = fs.Parse(args)
	requireType(fs, tf)
	r, cfg, log, err := setup(tf)
	fatalOn(log, err)
	p, err := resolveNamed(r, cfg, tf.typeName)
	fatalOn(log, err)
	dumper := spew.ConfigState{Indent: "  ", DisableMethods: true, SortKeys: true}
	dumper.Dump(p.Annotation())
	dumper.Dump(p.Constraints())
}

func requireType(fs *flag.FlagSet, tf *toolFlags) {
	if tf.typeName == "" {
		fs.Usage()
		os.Exit(2)
	}
}

func reportIssues(err error) {
	iss, ok := typical.AsIssues(err)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	for _, it := range iss {
		line := fmt.Sprintf("%s  %s", it.Path, it.Code)
		if it.Message != "" {
			line += ": " + it.Message
		}
		if it.Hint != "" {
			line += " (" + it.Hint + ")"
		}
		fmt.Fprintln(os.Stderr, strings.TrimSpace(line))
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatalOn(log zerolog.Logger, err error) {
	if err == nil {
		return
	}
	if _, ok := typical.AsIssues(err); ok {
		reportIssues(err)
		os.Exit(1)
	}
	log.Fatal().Err(err).Msg("command failed")
}
