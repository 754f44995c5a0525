package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appkg "mockinterview/internal/app"
	"mockinterview/internal/config"
	"mockinterview/internal/model"
	"mockinterview/internal/service"
)

const (
	PromptText       = "Text answers"
	PromptAudio      = "Audio answers (WAV files)"
	PromptShowDetail = "Show every answer"
	PromptExit       = "Exit"
	practiceUser     = "practice"
)

var errExit = errors.New("exit requested")

// answerFunc supplies the answer to the current question
type answerFunc func(mode model.Mode) (*model.SubmitAnswerRequest, error)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interview in the terminal without any external service",
	Run: func(_ *cobra.Command, _ []string) {
		practice()
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)
}

func practice() {
	logger, cfg, secrets := setup()
	defer logger.Sync()

	// Everything stays in memory for a terminal run.
	cfg.Storage.Backend = config.StorageMemory
	cfg.Audio.Backend = config.AudioFS
	cfg.Janitor.Schedule = ""
	if cfg.Questions.Source == config.QuestionsMongo {
		cfg.Questions.Source = config.QuestionsFile
	}
	secrets.RedisAddr = ""

	ctx := context.Background()
	a, err := appkg.New(ctx, cfg, secrets, logger, appkg.WithAudioFs(afero.NewMemMapFs()))
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close(ctx)

	modePrompt := promptui.Select{
		Label: "How do you want to answer?",
		Items: []string{PromptText, PromptAudio},
	}
	_, choice, err := modePrompt.Run()
	if err != nil {
		return
	}
	mode := model.ModeText
	if choice == PromptAudio {
		mode = model.ModeAudio
	}

	stats, err := runInterview(ctx, a.Interview, mode, readAnswer)
	if errors.Is(err, errExit) {
		fmt.Println("Interview abandoned.")
		return
	}
	if err != nil {
		logger.Fatal("interview failed", zap.Error(err))
	}

	printStats(stats)

	next := promptui.Select{
		Label: "Done",
		Items: []string{PromptShowDetail, PromptExit},
	}
	if _, choice, err := next.Run(); err == nil && choice == PromptShowDetail {
		for _, d := range stats.DetailedResponses {
			fmt.Printf("\n%d. %s\n   > %s\n   sentiment=%s category=%s score=%.2f\n",
				d.Ordinal, d.Question, d.Response, d.Sentiment, d.Category, d.Score)
		}
	}
}

func runInterview(ctx context.Context, svc *service.InterviewService, mode model.Mode, read answerFunc) (*model.SessionStats, error) {
	started, err := svc.StartSession(ctx, practiceUser, mode)
	if err != nil {
		return nil, err
	}

	question := started.FirstQuestion
	number := started.QuestionNumber
	for {
		fmt.Printf("\nQuestion %d of %d: %s\n", number, started.TotalQuestions, question)

		req, err := read(mode)
		if err != nil {
			return nil, err
		}
		req.SessionID = started.SessionID
		req.Question = question

		resp, err := svc.SubmitAnswer(ctx, practiceUser, req)
		if err != nil {
			return nil, err
		}
		fmt.Printf("  sentiment: %s, category: %s, score: %.2f\n", resp.Sentiment, resp.Category, resp.Score)

		if resp.Completed {
			return resp.Stats, nil
		}
		question = resp.NextQuestion
		number = resp.QuestionNumber
	}
}

func readAnswer(mode model.Mode) (*model.SubmitAnswerRequest, error) {
	if mode == model.ModeAudio {
		p := promptui.Prompt{
			Label: "Path to WAV file",
			Validate: func(s string) error {
				_, err := os.Stat(strings.TrimSpace(s))
				return err
			},
		}
		path, err := p.Run()
		if err != nil {
			return nil, errExit
		}
		data, err := os.ReadFile(strings.TrimSpace(path))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return &model.SubmitAnswerRequest{InputType: model.InputAudio, Audio: data}, nil
	}

	p := promptui.Prompt{Label: "Your answer"}
	text, err := p.Run()
	if err != nil {
		return nil, errExit
	}
	return &model.SubmitAnswerRequest{InputType: model.InputText, Response: text}, nil
}

func printStats(stats *model.SessionStats) {
	fmt.Printf("\nInterview complete. Average score: %.2f over %d answers\n", stats.AverageScore, stats.TotalQuestions)
	fmt.Printf("Average response length: %.2f words\n", stats.AverageResponseLength)
	printDistribution("Sentiment", stats.SentimentDistribution)
	printDistribution("Category", stats.CategoryDistribution)
}

func printDistribution(label string, dist map[string]int) {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", label)
	for _, k := range keys {
		fmt.Printf("  %-12s %d\n", k, dist[k])
	}
}
