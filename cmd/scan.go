// File: cmd/scan.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
	"github.com/xkilldash9x/cyberhealth-cli/internal/archive"
	"github.com/xkilldash9x/cyberhealth-cli/internal/config"
	"github.com/xkilldash9x/cyberhealth-cli/internal/llmclient"
	"github.com/xkilldash9x/cyberhealth-cli/internal/mail"
	"github.com/xkilldash9x/cyberhealth-cli/internal/manifest"
	"github.com/xkilldash9x/cyberhealth-cli/internal/network"
	"github.com/xkilldash9x/cyberhealth-cli/internal/observability"
	"github.com/xkilldash9x/cyberhealth-cli/internal/osv"
	"github.com/xkilldash9x/cyberhealth-cli/internal/registry"
	"github.com/xkilldash9x/cyberhealth-cli/internal/reporting"
	"github.com/xkilldash9x/cyberhealth-cli/internal/results"
	"github.com/xkilldash9x/cyberhealth-cli/internal/scanners/configrules"
	"github.com/xkilldash9x/cyberhealth-cli/internal/scanners/secrets"
	"github.com/xkilldash9x/cyberhealth-cli/internal/store"
)

// newScanCmd creates and configures the `scan` command.
func newScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Runs a security health check over a dependency manifest and/or project archive",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so CLI values override config file and env with the
			// right precedence.
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg := config.Get()
			cfg.Scan = config.ScanConfig{
				Requirements: viper.GetString("requirements"),
				Archive:      viper.GetString("archive"),
				Output:       viper.GetString("output"),
				Format:       viper.GetString("format"),
				EmailTo:      viper.GetString("email"),
				DeepAudit:    viper.GetBool("deep-audit"),
			}

			if cfg.Scan.Requirements == "" && cfg.Scan.Archive == "" {
				return fmt.Errorf("nothing to scan: provide --requirements and/or --archive")
			}

			envelope, err := runScan(ctx, cfg, logger)
			if err != nil {
				return err
			}

			if err := writeReport(cfg, envelope, logger); err != nil {
				return err
			}

			deliverReport(ctx, cfg, envelope, logger)

			fmt.Printf("\nScan complete. Cyber Health Score: %d/100 (%d findings). Scan ID: %s\n",
				envelope.Result.Score, envelope.Result.Details.Count(), envelope.ScanID)
			return nil
		},
	}

	scanCmd.Flags().StringP("requirements", "r", "", "Path to the dependency manifest (requirements.txt, package.json, *.csproj).")
	scanCmd.Flags().StringP("archive", "a", "", "Path to the project ZIP archive to scan for secrets and misconfiguration.")
	scanCmd.Flags().StringP("output", "o", "", "Output file path for the report. Defaults to stdout.")
	scanCmd.Flags().StringP("format", "f", "markdown", "Report format: 'markdown', 'json' or 'sarif'.")
	scanCmd.Flags().String("email", "", "Email address to deliver the report to.")
	scanCmd.Flags().Bool("deep-audit", false, "Run the Gemini deep audit over the archive contents.")

	return scanCmd
}

// runScan executes the three finding categories and assembles the envelope.
// A category failing upstream degrades to an empty list with a warning; the
// other categories still count toward the score.
func runScan(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*schemas.ReportEnvelope, error) {
	scanID := uuid.New().String()
	httpc := network.NewClient(network.NewDefaultClientConfig())

	project := "project"
	if cfg.Scan.Archive != "" {
		project = strings.TrimSuffix(filepath.Base(cfg.Scan.Archive), filepath.Ext(cfg.Scan.Archive))
	} else if cfg.Scan.Requirements != "" {
		project = filepath.Base(filepath.Dir(cfg.Scan.Requirements))
	}

	// Manifest parsing happens up front: its outcome decides whether an
	// archive is mandatory and which advisory ecosystem to query.
	var deps []manifest.Dependency
	if cfg.Scan.Requirements != "" {
		path, err := config.ExpandPath(cfg.Scan.Requirements)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading manifest: %w", err)
		}
		parsed, err := manifest.Parse(path, data)
		if err != nil {
			return nil, err
		}
		deps = parsed.Deps
		if ecosystem := parsed.Format.Ecosystem(); ecosystem != "" {
			cfg.OSV.Ecosystem = ecosystem
		}
		logger.Info("Parsed dependency manifest",
			zap.String("format", string(parsed.Format)),
			zap.Int("pinned", len(deps)),
			zap.Bool("unpinned_present", parsed.Unpinned))

		if parsed.Unpinned {
			if cfg.Scan.Archive == "" {
				return nil, fmt.Errorf("manifest contains unpinned dependencies; provide --archive for a full scan")
			}
			logger.Warn("Manifest contains unpinned dependencies; they are excluded from advisory lookup")
		}
	}

	var files []archive.File
	if cfg.Scan.Archive != "" {
		path, err := config.ExpandPath(cfg.Scan.Archive)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}
		files, err = archive.NewExtractor(cfg.Scanner, logger).Extract(data)
		if err != nil {
			return nil, fmt.Errorf("extracting archive: %w", err)
		}
		logger.Info("Extracted archive", zap.Int("files", len(files)))
	}

	var (
		vulnFindings   []schemas.VulnFinding
		secretFindings []schemas.SecretFinding
		configFindings []schemas.ConfigFinding
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		vulnFindings = lookupVulns(groupCtx, cfg, httpc, deps, logger)
		return nil
	})
	group.Go(func() error {
		secretFindings, configFindings = scanFiles(groupCtx, cfg, files)
		return nil
	})

	// Worker errors degrade per category instead of propagating.
	_ = group.Wait()

	envelope := &schemas.ReportEnvelope{
		ScanID:    scanID,
		Project:   project,
		Timestamp: time.Now().UTC(),
		Result:    results.Process(vulnFindings, secretFindings, configFindings),
	}

	if cfg.Scan.DeepAudit || cfg.AI.Enabled {
		audit, err := llmclient.NewAuditor(cfg.AI, logger).Audit(ctx, files)
		if err != nil {
			logger.Warn("Deep audit failed; continuing without it", zap.Error(err))
		} else {
			envelope.DeepAudit = audit
		}
	}

	return envelope, nil
}

// lookupVulns queries OSV for each pinned dependency and enriches the merged
// findings with the registry's latest published version.
func lookupVulns(ctx context.Context, cfg *config.Config, httpc *network.Client, deps []manifest.Dependency, logger *zap.Logger) []schemas.VulnFinding {
	if len(deps) == 0 {
		return nil
	}

	items := make([]osv.QueryItem, len(deps))
	for i, dep := range deps {
		items[i] = osv.QueryItem{Name: dep.Name, Version: dep.Version}
	}

	batch, err := osv.NewClient(cfg.OSV, httpc, logger).QueryBatch(ctx, items)
	if err != nil {
		logger.Warn("OSV lookup failed; scoring without vulnerability findings", zap.Error(err))
		return nil
	}

	findings, err := osv.Flatten(batch)
	if err != nil {
		logger.Warn("OSV response rejected; scoring without vulnerability findings", zap.Error(err))
		return nil
	}

	if cfg.Registry.Enabled && len(findings) > 0 {
		client := registry.NewClient(cfg.Registry, httpc, logger)
		for i := range findings {
			findings[i].RecommendedVersion = client.LatestVersion(ctx, findings[i].Package)
		}
	}

	return findings
}

// scanFiles runs the secret and config rules over every extracted file with
// bounded parallelism.
func scanFiles(ctx context.Context, cfg *config.Config, files []archive.File) ([]schemas.SecretFinding, []schemas.ConfigFinding) {
	if len(files) == 0 {
		return nil, nil
	}

	type fileFindings struct {
		secrets []schemas.SecretFinding
		configs []schemas.ConfigFinding
	}

	perFile := make([]fileFindings, len(files))

	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(cfg.Scanner.Concurrency)
	for i, f := range files {
		group.Go(func() error {
			text := string(f.Data)
			perFile[i] = fileFindings{
				secrets: secrets.Scan(f.Path, text),
				configs: configrules.Scan(f.Path, text),
			}
			return nil
		})
	}
	_ = group.Wait()

	var secretFindings []schemas.SecretFinding
	var configFindings []schemas.ConfigFinding
	for _, ff := range perFile {
		secretFindings = append(secretFindings, ff.secrets...)
		configFindings = append(configFindings, ff.configs...)
	}
	return secretFindings, configFindings
}

func writeReport(cfg *config.Config, envelope *schemas.ReportEnvelope, logger *zap.Logger) error {
	output := cfg.Scan.Output
	if output != "" {
		expanded, err := config.ExpandPath(output)
		if err != nil {
			return err
		}
		output = expanded
	}

	reporter, err := reporting.New(cfg.Scan.Format, output, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize reporter: %w", err)
	}
	if err := reporter.Write(envelope); err != nil {
		reporter.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := reporter.Close(); err != nil {
		return fmt.Errorf("failed to finalize report: %w", err)
	}

	if output != "" {
		logger.Info("Report written", zap.String("path", output), zap.String("format", cfg.Scan.Format))
	}
	return nil
}

// deliverReport handles the optional side channels: email delivery and scan
// history persistence. Both are best effort.
func deliverReport(ctx context.Context, cfg *config.Config, envelope *schemas.ReportEnvelope, logger *zap.Logger) {
	if cfg.Scan.EmailTo != "" {
		report := renderForEmail(envelope)
		subject := fmt.Sprintf("%s - Cyber Health Report", envelope.Project)
		filename := fmt.Sprintf("%s_Report.md", envelope.Project)
		if err := mail.NewMailer(cfg.Email, logger).Send(cfg.Scan.EmailTo, subject, filename, report); err != nil {
			logger.Warn("Report email delivery failed", zap.Error(err))
		}
	}

	if cfg.Database.URL != "" {
		if err := persistReport(ctx, cfg.Database.URL, envelope, logger); err != nil {
			logger.Warn("Scan history persistence failed", zap.Error(err))
		}
	}
}

func persistReport(ctx context.Context, databaseURL string, envelope *schemas.ReportEnvelope, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	dbStore, err := store.New(ctx, pool, logger)
	if err != nil {
		return err
	}
	return dbStore.SaveReport(ctx, envelope)
}

// renderForEmail produces the markdown attachment body in memory.
func renderForEmail(envelope *schemas.ReportEnvelope) []byte {
	var buf strings.Builder
	reporter := reporting.NewMarkdownReporter(&nopCloser{&buf})
	_ = reporter.Write(envelope)
	return []byte(buf.String())
}

type nopCloser struct {
	*strings.Builder
}

func (n *nopCloser) Close() error { return nil }
