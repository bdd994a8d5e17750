package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lastcallsoftware/trackeats/internal/application/catalog"
	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/apiclient"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/auth"
	"github.com/lastcallsoftware/trackeats/internal/ports/inbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var importOpts struct {
	username string
	dryRun   bool
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load foods from a YAML file into the backend",
	Long: `Import reads a YAML document with a top-level "foods" list and creates
each food through the backend API. Entries carrying an id update the
existing food instead.

The password is read from TRACKEATS_PASSWORD, or from stdin when unset.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importOpts.username, "username", "u", "", "account to log in as")
	importCmd.Flags().BoolVar(&importOpts.dryRun, "dry-run", false, "validate the file without contacting the backend")
}

// foodFile is the layout of an import document
type foodFile struct {
	Foods []nutrition.Food `yaml:"foods"`
}

// readFoods decodes and validates an import document. Every invalid entry
// is reported, not just the first.
func readFoods(r io.Reader) ([]nutrition.Food, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc foodFile
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("import file is empty")
		}
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}

	var problems []string
	for i, f := range doc.Foods {
		if err := f.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("entry %d (%s): %v", i+1, f.DisplayName(), err))
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid foods:\n  %s", strings.Join(problems, "\n  "))
	}
	return doc.Foods, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	foods, err := readFoods(f)
	if err != nil {
		return err
	}
	if importOpts.dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d foods are valid\n", len(foods))
		return nil
	}
	if importOpts.username == "" {
		return fmt.Errorf("--username is required")
	}

	cfg, log, err := loadCLI()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}

	client := apiclient.New(cfg, log)
	token, err := client.Login(cmd.Context(), importOpts.username, password)
	if err != nil {
		return fmt.Errorf("login failed: %s", errors.Message(err))
	}

	saved, err := importFoods(cmd.Context(), catalog.NewService(client, log), auth.NewContext(token), foods, log)
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d foods\n", saved, len(foods))
	return err
}

// importFoods saves foods in order and stops at the first failure
func importFoods(ctx context.Context, svc inbound.CatalogService, creds *auth.Context, foods []nutrition.Food, log *zap.Logger) (int, error) {
	for i, food := range foods {
		saved, err := svc.SaveFood(ctx, creds, food)
		if err != nil {
			return i, fmt.Errorf("entry %d (%s): %s", i+1, food.DisplayName(), errors.Message(err))
		}
		log.Debug("Imported food", zap.Int("id", saved.ID), zap.String("name", saved.DisplayName()))
	}
	return len(foods), nil
}

func readPassword(stdin io.Reader) (string, error) {
	if pw := os.Getenv("TRACKEATS_PASSWORD"); pw != "" {
		return pw, nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", fmt.Errorf("no password given")
	}
	return pw, nil
}
