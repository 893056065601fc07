package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/strax84mb/travel-advisor/internal/apperr"
	"github.com/strax84mb/travel-advisor/internal/config"
	"github.com/strax84mb/travel-advisor/internal/domain"
	"github.com/strax84mb/travel-advisor/internal/generator"
	"github.com/strax84mb/travel-advisor/internal/graph"
	"github.com/strax84mb/travel-advisor/internal/logging"
	"github.com/strax84mb/travel-advisor/internal/repository"
	"github.com/strax84mb/travel-advisor/internal/service"
)

// cli holds state shared by all subcommands once the root pre-run has loaded
// the configuration.
type cli struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	app := &cli{}

	root := &cobra.Command{
		Use:           "advisorctl",
		Short:         "Import, generate and query travel advisor route data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app.cfg = cfg
			app.logger = logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr()).With("component", "advisorctl")
			return nil
		},
	}

	root.AddCommand(app.ingestCmd(), app.routeCmd(), app.datagenCmd())
	return root
}

func (app *cli) ingestCmd() *cobra.Command {
	var (
		dataDir string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Import cities, airports and routes CSV files into the graph database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("data-dir") {
				dataDir = app.cfg.Import.DataDir
			}
			if !cmd.Flags().Changed("workers") {
				workers = app.cfg.Import.Workers
			}

			data, err := service.LoadDataset(dataDir)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			client, err := app.graphClient(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := client.Close(context.Background()); err != nil {
					app.logger.Warn("closing graph client failed", "error", err)
				}
			}()

			repo := repository.New(client)
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}

			start := time.Now()
			result, err := service.NewImporter(repo, workers, app.logger).Import(ctx, data)
			app.logger.Info("ingestion finished",
				"duration", time.Since(start).String(),
				"cities", result.Cities,
				"airports", result.Airports,
				"routes", result.Routes,
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cities, %d airports and %d routes\n", result.Cities, result.Airports, result.Routes)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory containing cities.csv, airports.csv and routes.csv")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent route writers")
	return cmd
}

func (app *cli) routeCmd() *cobra.Command {
	var dataDir, from, to string
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Find the cheapest route between two cities using CSV files only",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("data-dir") {
				dataDir = app.cfg.Import.DataDir
			}

			data, err := service.LoadDataset(dataDir)
			if err != nil {
				return err
			}
			g, err := data.StaticGraph()
			if err != nil {
				return err
			}

			origin, ok := g.CityByName(from)
			if !ok {
				return apperr.NotFound(apperr.CodeEntityNotFound, "city %q not found", from)
			}
			destination, ok := g.CityByName(to)
			if !ok {
				return apperr.NotFound(apperr.CodeEntityNotFound, "city %q not found", to)
			}

			svc := service.NewOfflineService(g, app.logger, service.SearchOptions{
				MaxRounds: app.cfg.Search.MaxRounds,
				Timeout:   app.cfg.Search.Timeout,
			})
			itinerary, err := svc.CheapestRoute(cmd.Context(), origin.ID, destination.ID)
			if err != nil {
				return err
			}
			return printItinerary(cmd, origin, destination, itinerary)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory containing cities.csv, airports.csv and routes.csv")
	cmd.Flags().StringVar(&from, "from", "", "name of the starting city")
	cmd.Flags().StringVar(&to, "to", "", "name of the destination city")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (app *cli) datagenCmd() *cobra.Command {
	def := generator.DefaultConfig()
	var (
		genCfg    generator.Config
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "datagen",
		Short: "Generate a synthetic travel network as import CSV files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			data, err := generator.New(genCfg).Generate(ctx)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}
			if err := generator.WriteDataset(data, outputDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d cities, %d airports and %d routes into %s\n",
				len(data.Cities), len(data.Airports), len(data.Routes), outputDir)
			return nil
		},
	}
	cmd.Flags().IntVar(&genCfg.NumCities, "cities", def.NumCities, "number of cities")
	cmd.Flags().IntVar(&genCfg.MaxAirportsPerCity, "max-airports", def.MaxAirportsPerCity, "maximum airports per city")
	cmd.Flags().IntVar(&genCfg.NumRoutes, "routes", def.NumRoutes, "number of routes")
	cmd.Flags().Int64Var(&genCfg.MaxPrice, "max-price", def.MaxPrice, "maximum route price")
	cmd.Flags().Float64Var(&genCfg.ZeroPriceChance, "zero-price-chance", def.ZeroPriceChance, "probability of a free route")
	cmd.Flags().Uint64Var(&genCfg.Seed, "seed", def.Seed, "random seed for deterministic generation")
	cmd.Flags().StringVar(&outputDir, "output-dir", "data", "directory to write the CSV files to")
	return cmd
}

func (app *cli) graphClient(ctx context.Context) (graph.Client, error) {
	if app.cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            app.cfg.Graph.URI,
		Database:       app.cfg.Graph.Database,
		Username:       app.cfg.Graph.Username,
		Password:       app.cfg.Graph.Password,
		MaxConnections: app.cfg.Graph.MaxConnections,
	})
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	app.logger.Info("connected to graph", "uri", app.cfg.Graph.URI, "database", app.cfg.Graph.Database)
	return client, nil
}

func printItinerary(cmd *cobra.Command, origin, destination domain.City, it domain.Itinerary) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s -> %s: total price %d\n", origin.Name, destination.Name, it.TotalPrice)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, step := range it.Steps {
		switch step.Kind {
		case domain.StepFlight:
			fmt.Fprintf(tw, "%s\t%s\t%s\troute %d\t%d\n", step.Kind, step.AirportName, step.CityName, step.RouteID, step.Price)
		default:
			fmt.Fprintf(tw, "%s\t%s\t%s\t\t\n", step.Kind, step.AirportName, step.CityName)
		}
	}
	return tw.Flush()
}
