// Package main is the CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokenforge/sage/internal/augment"
	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/engine"
	"github.com/tokenforge/sage/internal/knowledge"
	"github.com/tokenforge/sage/internal/learning"
	"github.com/tokenforge/sage/internal/metrics"
	"github.com/tokenforge/sage/internal/model"
	"github.com/tokenforge/sage/internal/reasoning"
	"github.com/tokenforge/sage/internal/tasks"
	"github.com/tokenforge/sage/internal/users"
)

var rootCmd = &cobra.Command{
	Use:   "sage",
	Short: "Sage assistant CLI",
	Long:  "CLI for asking the Sage assistant, submitting feedback and managing its knowledge base",
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question",
	Long:  "Ask a question against the local knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Submit feedback on an answer",
	Long:  "Record a 1-5 rating for a question and answer pair; the learning worker picks it up on its next batch",
	RunE:  runFeedback,
}

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the knowledge base",
}

var knowledgeImportCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import seed knowledge from a directory of markdown files",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeImport,
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge entries",
	RunE:  runKnowledgeList,
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List pending system tasks",
	RunE:  runTasks,
}

func init() {
	askCmd.Flags().String("user", "", "User ID for personalization and conversation memory")

	feedbackCmd.Flags().String("user", "", "User ID")
	feedbackCmd.Flags().String("question", "", "The question that was asked (required)")
	feedbackCmd.Flags().String("answer", "", "The answer that was given (required)")
	feedbackCmd.Flags().Int("rating", 0, "Rating from 1 to 5 (required)")
	feedbackCmd.Flags().StringArray("topic", []string{}, "Topic the answer covered (can be repeated)")
	feedbackCmd.Flags().String("comment", "", "Free-text comment")
	feedbackCmd.MarkFlagRequired("question")
	feedbackCmd.MarkFlagRequired("answer")
	feedbackCmd.MarkFlagRequired("rating")

	knowledgeListCmd.Flags().String("category", "", "Filter by knowledge category")
	knowledgeListCmd.Flags().String("q", "", "Filter by search term (with --category)")

	knowledgeCmd.AddCommand(knowledgeImportCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(knowledgeCmd)
	rootCmd.AddCommand(tasksCmd)
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("SAGE_CONFIG")
	if path == "" {
		path = "sage.yaml"
	}
	return config.LoadFile(path)
}

func openKnowledge(cfg *config.Config) (*knowledge.Store, error) {
	return knowledge.NewStore(cfg.Store.KnowledgeDir())
}

func runAsk(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	question := args[0]
	for _, a := range args[1:] {
		question += " " + a
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openKnowledge(cfg)
	if err != nil {
		return err
	}

	daily, err := metrics.NewDaily(cfg.Store.MetricsDir())
	if err != nil {
		return err
	}

	svc := augment.NewAnthropicService(cfg.Augment)
	eng := engine.New(engine.Options{
		Store:     store,
		Patterns:  reasoning.NewStore(),
		Gateway:   augment.NewGateway(svc, cfg.Augment, cfg.Tunables),
		Directory: users.NewInMemory(),
		Daily:     daily,
		Tunables:  cfg.Tunables,
	})

	answer := eng.Ask(context.Background(), userID, question)

	fmt.Println(answer.Text)
	fmt.Printf("\n[category: %s, confidence: %.2f", answer.Category, answer.Confidence)
	if answer.Augmented {
		fmt.Print(", augmented")
	}
	fmt.Println("]")
	if len(answer.Sources) > 0 {
		fmt.Println("Sources:")
		for _, src := range answer.Sources {
			fmt.Printf("  - %s\n", src)
		}
	}
	if answer.Action.Type != "" && answer.Action.Type != model.ActionNone {
		fmt.Printf("Suggested action: %s\n", answer.Action.Type)
	}
	return nil
}

func runFeedback(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	question, _ := cmd.Flags().GetString("question")
	answer, _ := cmd.Flags().GetString("answer")
	rating, _ := cmd.Flags().GetInt("rating")
	topics, _ := cmd.Flags().GetStringArray("topic")
	comment, _ := cmd.Flags().GetString("comment")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	events, err := learning.NewEventStore(cfg.Store.FeedbackDir())
	if err != nil {
		return err
	}

	event, err := events.Add(model.FeedbackEvent{
		UserID:   userID,
		Question: question,
		Answer:   answer,
		Rating:   rating,
		Topics:   topics,
		Comment:  comment,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Feedback recorded: %s\n", event.ID)
	return nil
}

func runKnowledgeImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openKnowledge(cfg)
	if err != nil {
		return err
	}

	res, err := store.ImportDir(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d entries\n", res.Created)
	for _, skip := range res.Skipped {
		fmt.Printf("  skipped %s\n", skip)
	}
	return nil
}

func runKnowledgeList(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	term, _ := cmd.Flags().GetString("q")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openKnowledge(cfg)
	if err != nil {
		return err
	}

	var entries []model.KnowledgeEntry
	if category != "" {
		entries = store.FindByCategory(model.KnowledgeCategory(category), term)
	} else {
		entries = store.GetAll()
	}

	if len(entries) == 0 {
		fmt.Println("No knowledge entries found")
		return nil
	}
	fmt.Printf("%-30s %-12s %-10s %s\n", "TOPIC", "CATEGORY", "CONFIDENCE", "SOURCE")
	for _, e := range entries {
		topic := e.Topic
		if e.Subtopic != "" {
			topic += "/" + e.Subtopic
		}
		fmt.Printf("%-30s %-12s %-10d %s\n", topic, e.Category, e.Confidence, e.Source)
	}
	return nil
}

func runTasks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := tasks.NewStore(cfg.Store.TasksDir())
	if err != nil {
		return err
	}

	pending := store.Pending()
	if len(pending) == 0 {
		fmt.Println("No pending tasks")
		return nil
	}
	fmt.Printf("%-36s %-22s %-8s %s\n", "ID", "TYPE", "PRIORITY", "SCHEDULED")
	for _, t := range pending {
		fmt.Printf("%-36s %-22s %-8d %s\n", t.ID, t.TaskType, t.Priority, t.ScheduledFor.Format("2006-01-02 15:04"))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
