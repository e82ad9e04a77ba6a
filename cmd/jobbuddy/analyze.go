package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"jobbuddy-backend/internal/bootstrap"
	"jobbuddy-backend/internal/extract"
	"jobbuddy-backend/internal/llm"
	"jobbuddy-backend/internal/shared/apperr"
	"jobbuddy-backend/internal/shared/config"
	"jobbuddy-backend/internal/shared/storage/object"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	analyzeJobSource    string
	analyzeQuestions    string
	analyzeInstructions string
)

//nolint:gochecknoglobals // Cobra boilerplate
var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume-file> <job-file>",
	Short: "Analyze a resume file against a job posting without storing anything",
	Long: `Extracts text from a PDF, DOCX or plain text resume, sends it with the job
posting to the configured provider and prints the parsed analysis as JSON.

Examples:
  jobbuddy analyze resume.pdf job.txt
  jobbuddy analyze resume.docx job.txt --questions "Why this team?"`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeJobSource, "source", "", "Where the job posting came from")
	analyzeCmd.Flags().StringVar(&analyzeQuestions, "questions", "", "Custom questions to answer")
	analyzeCmd.Flags().StringVar(&analyzeInstructions, "instructions", "", "File with analysis instructions replacing the default template")
}

type analyzeOutput struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	PromptHash string `json:"promptHash"`
	llm.Parsed
}

func runAnalyze(cmd *cobra.Command, args []string) (err error) {
	resumeText, err := readResume(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	jobText, err := os.ReadFile(args[1])
	if err != nil {
		err = fmt.Errorf("read job posting: %w", err)
		return err
	}
	var instructions []byte
	if analyzeInstructions != "" {
		instructions, err = os.ReadFile(analyzeInstructions)
		if err != nil {
			err = fmt.Errorf("read instructions: %w", err)
			return err
		}
	}

	cfg := config.Load()
	client, err := bootstrap.BuildLLM(cfg)
	if err != nil {
		return err
	}

	req := llm.BuildRequest(llm.PromptInput{
		Instructions: string(instructions),
		ResumeText:   resumeText,
		JobText:      string(jobText),
		JobSource:    analyzeJobSource,
		Questions:    analyzeQuestions,
		MaxTokens:    cfg.LLMMaxTokens,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLMTimeout)
	defer cancel()
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	if err != nil {
		err = &apperr.ProviderError{Provider: client.Name(), Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "provider responded in %s\n", time.Since(start).Round(time.Millisecond))

	parsed, err := llm.ParseAnalysis(resp.Text)
	if err != nil {
		var perr *apperr.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintln(cmd.ErrOrStderr(), perr.Raw)
		}
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	err = enc.Encode(analyzeOutput{
		Provider:   client.Name(),
		Model:      resp.Model,
		PromptHash: req.Hash(),
		Parsed:     parsed,
	})
	return err
}

func readResume(ctx context.Context, path string) (text string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("read resume: %w", err)
		return text, err
	}
	name := filepath.Base(path)
	text, err = extract.Text(ctx, data, object.DetectMimeType(name, data), name)
	return text, err
}
