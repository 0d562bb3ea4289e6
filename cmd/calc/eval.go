package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	grpcapi "github.com/lemonberrylabs/calculator/pkg/api/grpc"
	"github.com/lemonberrylabs/calculator/pkg/expr"
)

var errCalculation = errors.New("one or more expressions failed")

// evaluator computes the display text for an expression.
type evaluator func(ctx context.Context, expression string) (string, error)

func localEvaluator(verbose bool, w io.Writer) evaluator {
	return func(ctx context.Context, expression string) (string, error) {
		res := expr.Explain(expression)
		if verbose {
			fmt.Fprintf(w, "postfix: %s\n", res.Postfix)
			if res.Err != nil {
				fmt.Fprintf(w, "error: %v\n", res.Err)
			}
		}
		return res.Display, nil
	}
}

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval EXPRESSION...",
		Short: "Evaluate expressions, one result per line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			addr, _ := cmd.Flags().GetString("server")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			eval := localEvaluator(verbose, cmd.OutOrStdout())
			if addr != "" {
				conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
				if err != nil {
					return fmt.Errorf("connecting to %s: %w", addr, err)
				}
				defer conn.Close()
				client := grpcapi.NewClient(conn)
				eval = func(ctx context.Context, expression string) (string, error) {
					ctx, cancel := context.WithTimeout(ctx, timeout)
					defer cancel()
					return client.Calculate(ctx, expression)
				}
			}
			return runEval(cmd.Context(), cmd.OutOrStdout(), eval, args)
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "Print the postfix form and failure cause")
	cmd.Flags().String("server", "", "Evaluate on a calc gRPC server at this address instead of locally")
	cmd.Flags().Duration("timeout", 5*time.Second, "Per-expression timeout for --server")
	return cmd
}

func runEval(ctx context.Context, w io.Writer, eval evaluator, expressions []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	failed := false
	for _, e := range expressions {
		out, err := eval(ctx, e)
		if err != nil {
			return err
		}
		if out == expr.ErrorText {
			failed = true
		}
		fmt.Fprintln(w, out)
	}
	if failed {
		return errCalculation
	}
	return nil
}

func newPostfixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "postfix EXPRESSION",
		Short: "Print the postfix (reverse Polish) form of an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := expr.ToPostfix(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pf)
			return nil
		},
	}
}
