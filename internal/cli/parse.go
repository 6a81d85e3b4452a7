package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/config"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/integration"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
	v1 "github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser/v1"
	v2 "github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser/v2"
)

var successColor = color.New(color.FgGreen, color.Bold)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a payload file",
	Long:  "Run a captured Salesforce payload through the parser pipeline and print the resulting message as JSON",
	Example: `  sfdcctl parse --file account.xml --users users.yaml
  sfdcctl parse --file opp.json --event com.symphony.integration.sfdc.event.opportunityNotification --param action=closed
  cat account.xml | sfdcctl parse --file - --version 2.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		eventType, _ := cmd.Flags().GetString("event")
		version, _ := cmd.Flags().GetString("version")
		usersPath, _ := cmd.Flags().GetString("users")
		serviceUser, _ := cmd.Flags().GetString("service-user")
		name, _ := cmd.Flags().GetString("integration")
		params, _ := cmd.Flags().GetStringToString("param")

		if _, ok := message.ParseVersion(version); !ok {
			return fmt.Errorf("unknown document version %q (want 1.0 or 2.0)", version)
		}

		body, err := readPayload(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}

		dir := identity.NewStaticDirectory()
		if usersPath != "" {
			if dir, err = identity.LoadStaticDirectory(usersPath); err != nil {
				return err
			}
		}

		conf := config.IntegrationConf{Name: name, ServiceUser: serviceUser, DocumentVersion: version}
		s := conf.Parser()
		integ := integration.New(conf, v1.NewFactory(dir, s), v2.NewFactory(dir, s))

		msg, err := integ.Parse(cmd.Context(), event.New(uuid.New().String(), eventType, body, params))
		if err != nil {
			return fmt.Errorf("parse %s: %w", file, err)
		}

		successColor.Fprintf(cmd.ErrOrStderr(), "✓ %s parsed as %s %s\n", file, msg.Format, msg.Version)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(msg)
	},
}

// readPayload reads file, or stdin when file is "-".
func readPayload(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return body, nil
	}
	body, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return body, nil
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("file", "f", "", "payload file, or - for stdin")
	parseCmd.Flags().StringP("event", "e", "", "declared event type (markup payloads carry their own)")
	parseCmd.Flags().String("version", string(message.V1), "document version: 1.0 or 2.0")
	parseCmd.Flags().StringP("users", "u", "", "YAML file of known users for mentions")
	parseCmd.Flags().String("service-user", "sfdcctl", "identity used for directory lookups")
	parseCmd.Flags().String("integration", parser.DefaultIntegrationName, "integration name used to key mentions")
	parseCmd.Flags().StringToString("param", nil, "transport parameter, e.g. action=closed (repeatable)")
	_ = parseCmd.MarkFlagRequired("file")
}
