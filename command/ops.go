package command

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-resume/resume"
)

// DelivererFactory builds a deliverer that writes into dir.
type DelivererFactory func(dir string) resume.Deliverer

// FileOpener creates the destination for a data backup.
type FileOpener func(path string) (io.WriteCloser, error)

// OpsCommand wires CLI/Cron execution of PDF exports and data backups.
type OpsCommand struct {
	exporter   Exporter
	store      *resume.Store
	deliverers DelivererFactory
	open       FileOpener
	format     resume.DataFormat
	dir        string
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
}

// OpsOption customizes ops commands.
type OpsOption func(*OpsCommand)

// WithOpsCLIConfig overrides CLI configuration.
func WithOpsCLIConfig(cfg gcmd.CLIConfig) OpsOption {
	return func(cmd *OpsCommand) {
		cmd.cliConfig = cfg
	}
}

// WithOpsCronConfig overrides cron configuration.
func WithOpsCronConfig(cfg gcmd.HandlerConfig) OpsOption {
	return func(cmd *OpsCommand) {
		cmd.cronConfig = cfg
	}
}

// WithOpsDir sets the default output directory.
func WithOpsDir(dir string) OpsOption {
	return func(cmd *OpsCommand) {
		cmd.dir = dir
	}
}

// WithOpsStore sets the store that --from imports into.
func WithOpsStore(store *resume.Store) OpsOption {
	return func(cmd *OpsCommand) {
		cmd.store = store
	}
}

// WithFileOpener overrides how backup files are created.
func WithFileOpener(open FileOpener) OpsOption {
	return func(cmd *OpsCommand) {
		cmd.open = open
	}
}

// NewExportPDFCommand creates a CLI/Cron command that writes resume.pdf.
func NewExportPDFCommand(exporter Exporter, deliverers DelivererFactory, opts ...OpsOption) *OpsCommand {
	cmd := &OpsCommand{
		exporter:   exporter,
		deliverers: deliverers,
		dir:        ".",
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"resume-export"},
			Description: "Export the resume as a PDF",
			Group:       "resume",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 6 * * *"},
	}
	return applyOpsOptions(cmd, opts)
}

// NewBackupCommand creates a CLI/Cron command that writes a data backup.
func NewBackupCommand(exporter Exporter, format resume.DataFormat, opts ...OpsOption) *OpsCommand {
	if format == "" {
		format = resume.FormatJSON
	}
	cmd := &OpsCommand{
		exporter: exporter,
		format:   format,
		open:     createFile,
		dir:      ".",
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"resume-backup"},
			Description: "Back up resume data",
			Group:       "resume",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 * * * *"},
	}
	return applyOpsOptions(cmd, opts)
}

func applyOpsOptions(cmd *OpsCommand, opts []OpsOption) *OpsCommand {
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// CronHandler executes the command on schedule.
func (c *OpsCommand) CronHandler() func() error {
	return func() error {
		_, err := c.Run(context.Background(), "", "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *OpsCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *OpsCommand) CLIHandler() any {
	return &opsCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *OpsCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

// Run imports from (when set) and writes the output into out, falling back to
// the configured directory. It returns the written path.
func (c *OpsCommand) Run(ctx context.Context, from, out string) (string, error) {
	if c == nil {
		return "", errors.New("resume command is nil", errors.CategoryInternal).
			WithTextCode("OPS_CMD_NIL")
	}
	if c.exporter == nil {
		return "", exporterRequired()
	}
	if strings.TrimSpace(from) != "" {
		if c.store == nil {
			return "", storeRequired()
		}
		data, err := loadResumeFromFile(from)
		if err != nil {
			return "", err
		}
		if err := c.store.Replace(ctx, data); err != nil {
			return "", err
		}
	}

	dir := strings.TrimSpace(out)
	if dir == "" {
		dir = c.dir
	}
	if c.format != "" {
		return c.backup(ctx, dir)
	}
	if c.deliverers == nil {
		return "", errors.New("deliverer factory not configured", errors.CategoryValidation).
			WithTextCode("DELIVERER_REQUIRED")
	}
	doc, err := c.exporter.ExportPDF(ctx, c.deliverers(dir))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, doc.Filename), nil
}

func (c *OpsCommand) backup(ctx context.Context, dir string) (string, error) {
	open := c.open
	if open == nil {
		open = createFile
	}
	path := filepath.Join(dir, "resume."+strings.ToLower(string(c.format)))
	w, err := open(path)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryExternal, "create backup file failed").
			WithTextCode("BACKUP_FILE_CREATE")
	}
	if _, err := c.exporter.ExportData(ctx, c.format, w); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, errors.CategoryExternal, "close backup file failed").
			WithTextCode("BACKUP_FILE_CLOSE")
	}
	return path, nil
}

type opsCLI struct {
	cmd  *OpsCommand
	From string `kong:"name='from',help='Path to a JSON resume to import first'"`
	Out  string `kong:"name='out',help='Output directory'"`
}

func (c *opsCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("resume command is required", errors.CategoryInternal).
			WithTextCode("OPS_CMD_NIL")
	}
	_, err := c.cmd.Run(context.Background(), c.From, c.Out)
	return err
}

func loadResumeFromFile(path string) (resume.Data, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return resume.Data{}, errors.Wrap(err, errors.CategoryExternal, "read resume file failed").
			WithTextCode("RESUME_FILE_READ")
	}

	data := resume.DefaultData()
	if err := json.Unmarshal(content, &data); err != nil {
		return resume.Data{}, errors.Wrap(err, errors.CategoryValidation, "resume file invalid JSON").
			WithTextCode("RESUME_FILE_INVALID")
	}
	return data, nil
}

func createFile(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
