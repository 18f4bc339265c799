// cmd/ogscrapexter/commands.go
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/valpere/OGScrapexter/internal/config"
	"github.com/valpere/OGScrapexter/internal/output"
	"github.com/valpere/OGScrapexter/internal/scraper"
	"github.com/valpere/OGScrapexter/internal/utils"
)

// partialFailure reports a bulk run where some URLs failed
type partialFailure struct {
	failed, total int
}

func (p *partialFailure) Error() string {
	return fmt.Sprintf("%d of %d URLs failed", p.failed, p.total)
}

// tagFlags collects -tag property=field values
type tagFlags []scraper.MetaTag

func (t *tagFlags) String() string {
	parts := make([]string, len(*t))
	for i, tag := range *t {
		parts[i] = tag.Property + "=" + tag.FieldName
	}
	return strings.Join(parts, ",")
}

func (t *tagFlags) Set(value string) error {
	property, field, ok := strings.Cut(value, "=")
	if !ok || property == "" || field == "" {
		return fmt.Errorf("expected property=field, got %q", value)
	}
	multiple := strings.HasPrefix(property, "+")
	*t = append(*t, scraper.MetaTag{
		Property:  strings.TrimPrefix(property, "+"),
		FieldName: field,
		Multiple:  multiple,
	})
	return nil
}

// commonFlags are shared by extract, fetch and bulk
type commonFlags struct {
	configFile  string
	format      string
	outputFile  string
	pretty      bool
	allMedia    bool
	onlyOG      bool
	imgFallback bool
	bestImage   bool
	check       bool
	verbose     bool
	concurrency int
	tags        tagFlags
}

func (c *cli) newFlagSet(name string, cf *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.StringVar(&cf.configFile, "config", "", "configuration file")
	fs.StringVar(&cf.format, "format", "", "output format: json, yaml or csv")
	fs.StringVar(&cf.outputFile, "o", "", "output file, - for stdout")
	fs.BoolVar(&cf.pretty, "pretty", false, "indent JSON output")
	fs.BoolVar(&cf.allMedia, "all-media", false, "keep every media record")
	fs.BoolVar(&cf.onlyOG, "only-og", false, "skip fallbacks")
	fs.BoolVar(&cf.imgFallback, "img-fallback", false, "scrape <img> elements when no image tag exists")
	fs.BoolVar(&cf.bestImage, "best-image", false, "report the best scored image")
	fs.BoolVar(&cf.check, "check", false, "validate extracted metadata")
	fs.BoolVar(&cf.verbose, "v", false, "verbose output")
	fs.IntVar(&cf.concurrency, "concurrency", 0, "parallel requests for bulk")
	fs.Var(&cf.tags, "tag", "custom meta tag as property=field, +property=field for lists")
	return fs
}

// parseArgs parses flags that may appear before or after positional arguments
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, utils.WrapError(err, utils.ErrCodeInvalidConfig, "invalid arguments")
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// loadConfig loads the configuration file, or defaults plus ./.env, and
// applies command line overrides
func (cf *commonFlags) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if cf.configFile != "" {
		loaded, err := config.LoadFromFile(cf.configFile)
		if err != nil {
			return nil, utils.WrapError(err, utils.ErrCodeInvalidConfig, "failed to load configuration")
		}
		cfg = loaded
	} else {
		if err := config.LoadDotEnv(".env"); err != nil {
			return nil, utils.WrapError(err, utils.ErrCodeInvalidConfig, "failed to load .env")
		}
		cfg = config.Default()
	}

	opts := &cfg.Extraction
	opts.AllMedia = opts.AllMedia || cf.allMedia
	opts.OnlyGetOpenGraphInfo = opts.OnlyGetOpenGraphInfo || cf.onlyOG
	opts.OGImageFallback = opts.OGImageFallback || cf.imgFallback
	opts.SelectBestImage = opts.SelectBestImage || cf.bestImage
	opts.Validate = opts.Validate || cf.check
	opts.CustomMetaTags = append(opts.CustomMetaTags, cf.tags...)

	if cf.format != "" {
		cfg.Output.Format = cf.format
	}
	if cf.outputFile != "" {
		cfg.Output.File = cf.outputFile
		if cf.format == "" {
			if detected := output.DetectFormat(cf.outputFile); detected != "" {
				cfg.Output.Format = string(detected)
			}
		}
	}
	cfg.Output.Pretty = cfg.Output.Pretty || cf.pretty
	if cf.concurrency > 0 {
		cfg.Bulk.Concurrency = cf.concurrency
	}
	if cf.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *cli) logger(cfg *config.Config) utils.Logger {
	return utils.NewLoggerWithOptions(utils.LoggerOptions{
		Level:  utils.ParseLogLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
		Output: c.stderr,
	})
}

func (c *cli) write(cfg *config.Config, v interface{}) error {
	manager, err := output.NewManager(cfg.Output)
	if err != nil {
		return err
	}
	manager.SetStdout(c.stdout)
	return manager.Write(v)
}

// open returns stdin for "-" and the named file otherwise
func (c *cli) open(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(c.stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeInvalidConfig, "failed to open input")
	}
	return f, nil
}

// runExtract extracts metadata from a local document without any network access
func (c *cli) runExtract(args []string) error {
	var cf commonFlags
	positional, err := parseArgs(c.newFlagSet("extract", &cf), args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return utils.NewError(utils.ErrCodeInvalidConfig, "usage: ogscrapexter extract [flags] <file.html|->").Build()
	}

	cfg, err := cf.loadConfig()
	if err != nil {
		return err
	}

	in, err := c.open(positional[0])
	if err != nil {
		return err
	}
	defer in.Close()

	parser, err := scraper.NewHTMLParserFromReader(in, "")
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeParsingError, "failed to read document")
	}
	result := scraper.NewExtractionEngine(cfg.Extraction, parser).ExtractAll()

	if cfg.Extraction.Validate || cfg.Extraction.SelectBestImage {
		return c.write(cfg, result)
	}
	return c.write(cfg, result.Data)
}

// runFetch fetches one URL through the configured cache and security policy
func (c *cli) runFetch(ctx context.Context, args []string) error {
	var cf commonFlags
	positional, err := parseArgs(c.newFlagSet("fetch", &cf), args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return utils.NewError(utils.ErrCodeInvalidConfig, "usage: ogscrapexter fetch [flags] <url>").Build()
	}

	cfg, err := cf.loadConfig()
	if err != nil {
		return err
	}
	rt, err := cfg.Build(c.logger(cfg))
	if err != nil {
		return err
	}
	defer rt.Close()

	targetURL := normalize(positional[0])
	result, err := rt.Engine.Scrape(ctx, targetURL)
	if err != nil {
		return err
	}

	// A directory destination gets a file named after the host
	if file := cfg.Output.File; strings.HasSuffix(file, "/") {
		cfg.Output.File = filepath.Join(file, utils.GenerateOutputFileName(targetURL, cfg.Output.Format))
	}
	return c.write(cfg, result)
}

// runBulk extracts every URL listed in a file
func (c *cli) runBulk(ctx context.Context, args []string) error {
	var cf commonFlags
	positional, err := parseArgs(c.newFlagSet("bulk", &cf), args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return utils.NewError(utils.ErrCodeInvalidConfig, "usage: ogscrapexter bulk [flags] <urls.txt|->").Build()
	}

	cfg, err := cf.loadConfig()
	if err != nil {
		return err
	}

	in, err := c.open(positional[0])
	if err != nil {
		return err
	}
	urls, err := readURLs(in)
	in.Close()
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return utils.NewError(utils.ErrCodeInvalidConfig, "no URLs to extract").Build()
	}

	logger := c.logger(cfg)
	rt, err := cfg.Build(logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	bulkConfig := cfg.BulkRunnerConfig()
	bulkConfig.OnProgress = func(completed, total int, url string) {
		logger.Debugf("progress %d/%d: %s", completed, total, url)
	}
	response, runErr := scraper.NewBulkRunner(rt.Engine, bulkConfig, logger).Run(ctx, urls)
	if response != nil {
		if err := c.write(cfg, response); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if response.Summary.Failed > 0 {
		return &partialFailure{failed: response.Summary.Failed, total: response.Summary.Total}
	}
	return nil
}

// readURLs reads one URL per line; blank lines and # comments are skipped
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, normalize(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeInvalidConfig, "failed to read URL list")
	}
	return urls, nil
}

// normalize drops fragments so equivalent URLs share a cache entry; the
// security validator reports unparseable input.
func normalize(rawURL string) string {
	normalized, _ := utils.NormalizeURL(rawURL)
	return normalized
}

func (c *cli) runValidate(args []string) error {
	if len(args) < 1 {
		return utils.NewError(utils.ErrCodeInvalidConfig, "usage: ogscrapexter validate <config.yaml>").Build()
	}

	cfg, err := config.LoadFromFile(args[0])
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeInvalidConfig, "configuration is invalid")
	}

	fmt.Fprintf(c.stdout, "Configuration file '%s' is valid\n", args[0])
	if hasFlag(args, "-v", "--verbose") {
		fmt.Fprintf(c.stdout, "  Cache: %s\n", cfg.Cache.Type)
		fmt.Fprintf(c.stdout, "  Output format: %s\n", cfg.Output.Format)
		fmt.Fprintf(c.stdout, "  Custom meta tags: %d\n", len(cfg.Extraction.CustomMetaTags))
	}
	return nil
}

func (c *cli) runTemplate(args []string) error {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	templateType := fs.String("type", "basic", "template type: basic, bulk or server")
	if err := fs.Parse(args); err != nil {
		return utils.WrapError(err, utils.ErrCodeInvalidConfig, "invalid arguments")
	}

	template := config.GenerateTemplate(*templateType)

	encoder := yaml.NewEncoder(c.stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(&template); err != nil {
		return utils.WrapError(err, utils.ErrCodeOutputFailed, "failed to marshal template to YAML")
	}
	return encoder.Close()
}
