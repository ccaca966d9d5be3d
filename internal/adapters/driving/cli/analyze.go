package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/komenta/internal/core/domain"
)

var (
	analyzeType   string
	analyzeLatest bool
	analyzeTarget int
	analyzeJSON   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [query]",
	Short: "Fetch and analyse TikTok comments",
	Long: `Runs one analysis end to end: resolves the query into videos, pages
through their comments, flags likely bots, classifies sentiment, and
prints the aggregate result.

The query is a username, a video URL, or a keyword depending on --type.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeType, "type", "t", "username", "query type: username, video, or keyword")
	analyzeCmd.Flags().BoolVar(&analyzeLatest, "latest", false, "analyse only the most recent video")
	analyzeCmd.Flags().IntVarP(&analyzeTarget, "target", "n", 0, "comments to collect per video (default 100)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the full result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}

	queryType, err := domain.ParseQueryType(analyzeType)
	if err != nil {
		return err
	}

	q := domain.Query{
		Text:        args[0],
		Type:        queryType,
		LatestOnly:  analyzeLatest,
		TargetCount: analyzeTarget,
	}

	result, err := analysisService.Analyze(context.Background(), q)
	if err != nil {
		if domain.IsNoData(err) {
			cmd.Printf("No data for %q: %v\n", q.Text, err)
			return nil
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputResultSummary(cmd, result)
}

func outputResultSummary(cmd *cobra.Command, r *domain.AggregateResult) error {
	cmd.Printf("Query: %s (%s)\n", r.Query, r.QueryType)
	cmd.Println()
	cmd.Printf("  Comments:   %d total, %d real, %d likely bots\n",
		r.TotalComments, r.RealComments, r.BotComments)
	cmd.Printf("  Sentiment:  %d positive, %d negative, %d neutral\n",
		r.SentimentCounts.Positive, r.SentimentCounts.Negative, r.SentimentCounts.Neutral)
	cmd.Printf("  Authors:    %d unique\n", r.UniqueAuthors)
	cmd.Printf("  Videos:     %d analysed", r.VideosAnalyzed)
	if r.FailedVideos > 0 {
		cmd.Printf(" (%d failed)", r.FailedVideos)
	}
	cmd.Println()

	if r.VideoStats != nil {
		cmd.Printf("  Engagement: %d likes, %d shares, %d saves, %d views\n",
			r.VideoStats.Likes, r.VideoStats.Shares, r.VideoStats.Saves, r.VideoStats.Views)
	}
	if r.HasMore {
		cmd.Printf("  More comments available (cursor %s)\n", r.Cursor)
	}

	return nil
}
