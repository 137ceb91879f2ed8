package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/llm-jury/internal/models"
	"github.com/lorenzotomasdiez/llm-jury/internal/openrouter"
	"github.com/lorenzotomasdiez/llm-jury/internal/output"
	"github.com/lorenzotomasdiez/llm-jury/internal/persona"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List free OpenRouter models usable for personas",
		RunE:  runModels,
	}
	cmd.Flags().String("personas", "", "Show the round-robin model assignment for a persona catalog")
	return cmd
}

func runModels(cmd *cobra.Command, args []string) error {
	apiKey, _ := cmd.Root().PersistentFlags().GetString("api-key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key required: set --api-key flag or OPENROUTER_API_KEY env var")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := openrouter.NewClient(apiKey)
	allModels, err := client.ListModels(ctx)
	if err != nil {
		fmt.Printf("Warning: could not fetch models: %v. Using defaults.\n", err)
		allModels = models.DefaultFreeModels()
	}
	registry := models.NewRegistry(allModels)
	if len(registry.FreeModels()) == 0 {
		registry = models.NewRegistry(models.DefaultFreeModels())
	}

	fmt.Println(output.Bold("Free models:"))
	for _, m := range registry.FreeModels() {
		fmt.Printf("  %s (%s)\n", m.ID, m.Name)
	}

	catalogName, _ := cmd.Flags().GetString("personas")
	if catalogName == "" {
		return nil
	}
	panel, err := persona.Catalog(catalogName)
	if err != nil {
		return err
	}
	assigned := registry.AssignToPersonas(panel)
	fmt.Printf("\n%s\n", output.Bold("Assignment for "+catalogName+":"))
	for _, p := range assigned {
		fmt.Printf("  %-28s -> %s\n", p.Name, p.Model)
	}
	return nil
}
