package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	netmcp "github.com/sanonone/netsearch/internal/mcp"
	"github.com/sanonone/netsearch/internal/server"
	"github.com/sanonone/netsearch/pkg/ids"
	"github.com/sanonone/netsearch/pkg/query"
	"github.com/sanonone/netsearch/pkg/session"
	"github.com/sanonone/netsearch/pkg/sharelink"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve client sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Expose share-link and search tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE:  runMCP,
	}

	searchCmd = &cobra.Command{
		Use:   "search <link>",
		Short: "Run the search described by a share link",
		Long: `Applies a share link to the default query, resolves its endpoints and
submits it, then prints the paths found grouped by length. The search runs
even when the link carries execute=false.`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	linkCmd = &cobra.Command{
		Use:   "link",
		Short: "Encode and decode share links",
	}

	linkEncodeCmd = &cobra.Command{
		Use:   "encode [query.json]",
		Short: "Encode a JSON query (file or stdin) as a share link",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLinkEncode,
	}

	linkDecodeCmd = &cobra.Command{
		Use:   "decode <link>",
		Short: "Decode a share link into the full query",
		Args:  cobra.ExactArgs(1),
		RunE:  runLinkDecode,
	}

	schemaCmd = &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of a network-search query",
		Args:  cobra.NoArgs,
		RunE:  runSchema,
	}
)

func init() {
	searchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full session state as JSON")
	linkCmd.AddCommand(linkEncodeCmd, linkDecodeCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.logger.Sync()

	srv := server.NewServer(d.cfg, d.client, d.logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		srv.Shutdown()
		return nil
	}
}

func runMCP(cmd *cobra.Command, _ []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := netmcp.NewMCPServer(d.client, d.codec, d.logger)
	d.logger.Info("MCP server running on stdio")
	if err := s.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := session.New(ids.Next("cli"), d.client, d.codec, d.logger)
	defer sess.Close()

	st, err := searchLink(ctx, sess, args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), st)
	}
	return renderState(cmd.OutOrStdout(), st)
}

// searchLink applies link to sess and makes sure a search ran. A link with
// fields that do not decode is refused rather than searched without them.
func searchLink(ctx context.Context, sess *session.Session, link string) (session.State, error) {
	res, err := sess.ApplyLink(ctx, link)
	if err != nil {
		return session.State{}, err
	}
	if res.DecodeError() {
		return session.State{}, fmt.Errorf("share link has invalid fields: %v", res.Errors)
	}
	if sess.State().Result == nil {
		if err := sess.Submit(ctx); err != nil {
			return session.State{}, err
		}
	}
	return sess.State(), nil
}

func runLinkEncode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	q := query.New()
	if err := json.NewDecoder(in).Decode(&q); err != nil {
		return fmt.Errorf("invalid query JSON: %w", err)
	}
	for field, msg := range query.Validate(&q).ByField() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", field, msg)
	}
	codec := codecFor(cfg)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), codec.Link(&q))
	return err
}

// decodedLink is the output of "link decode".
type decodedLink struct {
	Query       query.NetworkSearchQuery `json:"query"`
	Decode      sharelink.DecodeResult   `json:"decode"`
	FieldErrors map[string]string        `json:"field_errors,omitempty"`
	Filters     string                   `json:"filters"`
	Link        string                   `json:"link"`
}

func runLinkDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q := query.New()
	res := sharelink.Decode(args[0], &q)
	codec := codecFor(cfg)
	return writeJSON(cmd.OutOrStdout(), decodedLink{
		Query:       q,
		Decode:      res,
		FieldErrors: query.Validate(&q).ByField(),
		Filters:     q.FilterOptions().String(),
		Link:        codec.Link(&q),
	})
}

func runSchema(cmd *cobra.Command, _ []string) error {
	schema, err := jsonschema.For[query.NetworkSearchQuery](nil)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), schema)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
