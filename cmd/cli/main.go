package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"insightrag-be/internal/bootstrap"
	"insightrag-be/internal/config"
	"insightrag-be/internal/dto"
	"insightrag-be/pkg/rag/session"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	answerColor = color.New(color.FgGreen)
	sourceColor = color.New(color.FgHiBlack)
	warnColor   = color.New(color.FgYellow)
	errColor    = color.New(color.FgRed, color.Bold)
)

func main() {
	var showSources bool

	rootCmd := &cobra.Command{
		Use:   "insightrag",
		Short: "Ask questions about a PDF or text document",
	}

	chatCmd := &cobra.Command{
		Use:   "chat <file>",
		Short: "Index a document and start an interactive question session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), args[0], showSources)
		},
	}
	chatCmd.Flags().BoolVar(&showSources, "sources", false, "print retrieved passages under each answer")

	indexCmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Index a document and print its chunk statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), args[0])
		},
	}

	rootCmd.AddCommand(chatCmd, indexCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		errColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openSession(ctx context.Context, path string) (*bootstrap.Container, *dto.SessionDetailResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	container, err := bootstrap.NewContainer(ctx, config.Load())
	if err != nil {
		return nil, nil, err
	}

	created, err := container.SessionService.CreateSession(ctx, filepath.Base(path), data)
	if err != nil {
		container.Close()
		return nil, nil, err
	}
	return container, created, nil
}

func runIndex(ctx context.Context, path string) error {
	container, created, err := openSession(ctx, path)
	if err != nil {
		return err
	}
	defer container.Close()

	titleColor.Printf("%s\n", created.Title)
	fmt.Printf("  session:  %s\n", created.Id)
	fmt.Printf("  chunks:   %d\n", created.Chunks)
	fmt.Printf("  limit:    %d questions\n", created.Limit)
	fmt.Printf("  expires:  %s\n", created.ExpiresAt.Format("15:04:05"))
	return nil
}

func runChat(ctx context.Context, path string, showSources bool) error {
	container, created, err := openSession(ctx, path)
	if err != nil {
		return err
	}
	defer container.Close()

	titleColor.Printf("Indexed %s (%d chunks). You can ask %d questions.\n", created.Title, created.Chunks, created.Limit)
	fmt.Println("Type a question, or an empty line to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			return nil
		}

		res, err := container.SessionService.Ask(ctx, created.Id, &dto.AskRequest{Question: question})
		if errors.Is(err, session.ErrLimitReached) {
			warnColor.Println("Question limit reached for this document.")
			return nil
		}
		if err != nil {
			errColor.Println(err)
			continue
		}

		if res.Degraded {
			warnColor.Println(res.Answer)
		} else {
			answerColor.Println(res.Answer)
		}
		if showSources {
			for _, src := range res.Sources {
				sourceColor.Printf("  [%d] %s\n", src.ChunkID, strings.ReplaceAll(src.Preview, "\n", " "))
			}
		}
		fmt.Printf("(%d of %d questions used)\n", res.QuestionCount, res.QuestionCount+res.Remaining)
	}
}
