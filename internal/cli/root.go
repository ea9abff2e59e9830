package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/mealbook/internal/app"
	"github.com/samvad-hq/mealbook/internal/config"
	"github.com/samvad-hq/mealbook/internal/importer"
	"github.com/samvad-hq/mealbook/internal/logger"
	"github.com/samvad-hq/mealbook/pkg/httpclient"
	"github.com/samvad-hq/mealbook/pkg/meals"
)

// Env carries what the commands need from main. Transport and PageClient are
// optional and replace the network clients in tests.
type Env struct {
	Config     *config.Config
	Log        logger.Logger
	Transport  httpclient.Transport
	PageClient httpclient.Client
}

type runtime struct {
	env    Env
	apiURL string
	token  string
	json   bool
}

// NewRootCommand creates the root command for mealctl.
func NewRootCommand(env Env) *cobra.Command {
	if env.Config == nil {
		env.Config = &config.Config{}
	}
	env.Log = logger.Ensure(env.Log)
	rt := &runtime{env: env}

	cmd := &cobra.Command{
		Use:   "mealctl",
		Short: "mealctl - manage meals in a mealbook catalogue",
		Long: `mealctl lists, creates, updates and deletes meals through the mealbook REST API.

Without an API URL (flag --api-url or MEALBOOK_API_URL) it works against the
local store, seeded with a sample catalogue.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rt.apiURL, "api-url", "", "Base URL of the meals API (default: $MEALBOOK_API_URL)")
	cmd.PersistentFlags().StringVar(&rt.token, "token", "", "Bearer token sent with every request (default: $API_TOKEN)")
	cmd.PersistentFlags().BoolVar(&rt.json, "json", false, "Output in JSON format")

	cmd.AddCommand(
		newListCmd(rt),
		newGetCmd(rt),
		newCreateCmd(rt),
		newUpdateCmd(rt),
		newDeleteCmd(rt),
		newImportCmd(rt),
		newCategoriesCmd(rt),
	)
	return cmd
}

// service builds the meals service for one command invocation. The returned
// func releases the local store, if one was opened.
func (rt *runtime) service() (*meals.Service, func(), error) {
	cfg := *rt.env.Config
	if u := strings.TrimSpace(rt.apiURL); u != "" {
		cfg.APIURL = strings.TrimRight(u, "/")
	}
	if rt.token != "" {
		cfg.APIToken = rt.token
	}

	var opts []httpclient.Option
	if rt.env.Transport != nil {
		opts = append(opts, httpclient.WithTransport(rt.env.Transport))
	}
	client := app.NewAPIClient(&cfg, rt.env.Log, opts...)

	if !cfg.Offline() {
		return meals.NewService(meals.NewRemoteSource(client), rt.env.Log), func() {}, nil
	}

	store, err := app.OpenStore(&cfg, rt.env.Log)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := store.Close(); err != nil {
			rt.env.Log.WarnObj("storage close failed", "error", err.Error())
		}
	}
	return meals.NewService(meals.Select(client, store), rt.env.Log), release, nil
}

func (rt *runtime) importer() *importer.Importer {
	return importer.New(rt.env.PageClient)
}

// withService runs fn against a freshly built service.
func (rt *runtime) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *meals.Service) error) error {
	svc, release, err := rt.service()
	if err != nil {
		return err
	}
	defer release()
	return fn(cmd.Context(), svc)
}

// FormatError renders err for the terminal, surfacing API status codes.
func FormatError(err error) string {
	var ce *httpclient.ClientError
	if errors.As(err, &ce) {
		if ce.IsTransport() {
			return "error: request failed: " + ce.Message
		}
		return fmt.Sprintf("error: %d %s", ce.Status, ce.Message)
	}
	return "error: " + err.Error()
}
