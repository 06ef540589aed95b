// Package main provides daoctl, a command line client for the dao-engine API.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	daohttp "daogov/contexts/governance/dao-engine/transport/http"
	"daogov/internal/platform/abi"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	server         string
	principal      string
	idempotencyKey string
	timeout        time.Duration
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "daoctl",
		Short:         "Command line client for the DAO governance engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.server, "server", envOr("DAOCTL_SERVER", "http://localhost:8080"), "API base URL")
	cmd.PersistentFlags().StringVarP(&flags.principal, "as", "p", os.Getenv("DAOCTL_PRINCIPAL"), "Principal sent as X-Principal-Id")
	cmd.PersistentFlags().StringVar(&flags.idempotencyKey, "idempotency-key", "", "Idempotency-Key for mutating calls")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 10*time.Second, "Request timeout")

	cmd.AddCommand(
		amountCmd(flags, "deposit", "Deposit approved tokens into custody", "/api/dao/v1/deposits"),
		amountCmd(flags, "withdraw", "Withdraw unlocked deposit", "/api/dao/v1/withdrawals"),
		balanceCmd(flags),
		proposeCmd(flags),
		proposalCmd(flags),
		proposalsCmd(flags),
		proposalActionCmd(flags, "vote", "Vote on a proposal", http.MethodPost, "votes"),
		proposalActionCmd(flags, "unvote", "Revoke a vote", http.MethodDelete, "votes"),
		proposalActionCmd(flags, "execute", "Execute a proposal that reached quorum", http.MethodPost, "execute"),
		proposalActionCmd(flags, "finalize", "Close an expired proposal", http.MethodPost, "finalize"),
		delegateCmd(flags),
		engineCmd(flags),
		tokenCmd(flags),
		encodeCmd(),
	)
	return cmd
}

func (f *globalFlags) client() *apiClient {
	return newAPIClient(f.server, f.principal, f.idempotencyKey, f.timeout)
}

func amountCmd(flags *globalFlags, use string, short string, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <amount>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			var resp daohttp.VoterResponse
			if err := flags.client().do(cmd.Context(), http.MethodPost, path, daohttp.AmountRequest{Amount: amount}, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}

func balanceCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [principal]",
		Short: "Show deposited and locked balance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			principal := flags.principal
			if len(args) == 1 {
				principal = args[0]
			}
			var resp daohttp.VoterResponse
			if err := flags.client().do(cmd.Context(), http.MethodGet, "/api/dao/v1/voters/"+url.PathEscape(principal), nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}

func proposeCmd(flags *globalFlags) *cobra.Command {
	var (
		recipient   string
		description string
		payload     string
		call        callFlags
		deadline    string
	)
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Create a proposal (owner only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if call.signature != "" {
				encoded, err := call.encode()
				if err != nil {
					return err
				}
				payload = "0x" + hex.EncodeToString(encoded)
			}
			req := daohttp.CreateProposalRequest{
				Recipient:   recipient,
				Description: description,
				Payload:     payload,
			}
			if deadline != "" {
				at, err := time.Parse(time.RFC3339, deadline)
				if err != nil {
					return fmt.Errorf("deadline: %w", err)
				}
				req.Deadline = &at
			}
			var resp daohttp.ProposalResponse
			if err := flags.client().do(cmd.Context(), http.MethodPost, "/api/dao/v1/proposals", req, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&recipient, "recipient", "", "Dispatch target of the instruction")
	cmd.Flags().StringVar(&description, "description", "", "Human readable description")
	cmd.Flags().StringVar(&payload, "payload", "0x", "Raw instruction payload as 0x-prefixed hex")
	cmd.Flags().StringVar(&deadline, "deadline", "", "RFC3339 deadline; defaults to now plus the voting period")
	call.register(cmd)
	_ = cmd.MarkFlagRequired("recipient")
	return cmd
}

func proposalCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "proposal <id>",
		Short: "Show a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			var resp daohttp.ProposalResponse
			if err := flags.client().do(cmd.Context(), http.MethodGet, "/api/dao/v1/proposals/"+strconv.FormatUint(id, 10), nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}

func proposalsCmd(flags *globalFlags) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "List proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := "/api/dao/v1/proposals"
			if status != "" {
				path += "?status=" + url.QueryEscape(status)
			}
			var resp daohttp.ProposalListResponse
			if err := flags.client().do(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter: open, executed or expired")
	return cmd
}

func proposalActionCmd(flags *globalFlags, use string, short string, method string, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <proposal-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			path := "/api/dao/v1/proposals/" + strconv.FormatUint(id, 10) + "/" + action
			var resp json.RawMessage
			if err := flags.client().do(cmd.Context(), method, path, nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}

func delegateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delegate <proposal-id> <delegate>",
		Short: "Delegate voting weight on one proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			path := "/api/dao/v1/proposals/" + strconv.FormatUint(id, 10) + "/delegations"
			var resp daohttp.DelegationResponse
			if err := flags.client().do(cmd.Context(), http.MethodPost, path, daohttp.DelegateRequest{Delegate: args[1]}, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}

func engineCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Show engine configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp daohttp.EngineInfoResponse
			if err := flags.client().do(cmd.Context(), http.MethodGet, "/api/dao/v1/engine", nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set-quorum <amount>",
			Short: "Change the minimum quorum (owner only)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				quorum, err := parseAmount(args[0])
				if err != nil {
					return err
				}
				var resp daohttp.EngineInfoResponse
				if err := flags.client().do(cmd.Context(), http.MethodPost, "/api/dao/v1/admin/quorum", daohttp.SetMinQuorumRequest{MinQuorum: quorum}, &resp); err != nil {
					return err
				}
				return printJSON(cmd, resp)
			},
		},
		&cobra.Command{
			Use:   "transfer-ownership <principal>",
			Short: "Hand the owner role to another principal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var resp daohttp.EngineInfoResponse
				if err := flags.client().do(cmd.Context(), http.MethodPost, "/api/dao/v1/admin/ownership", daohttp.TransferOwnershipRequest{NewOwner: args[0]}, &resp); err != nil {
					return err
				}
				return printJSON(cmd, resp)
			},
		},
	)
	return cmd
}

func tokenCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Development token ledger",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show token metadata",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				var resp daohttp.TokenInfoResponse
				if err := flags.client().do(cmd.Context(), http.MethodGet, "/api/token/v1/info", nil, &resp); err != nil {
					return err
				}
				return printJSON(cmd, resp)
			},
		},
		&cobra.Command{
			Use:   "balance [principal]",
			Short: "Show a token balance",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				principal := flags.principal
				if len(args) == 1 {
					principal = args[0]
				}
				var resp daohttp.TokenBalanceResponse
				if err := flags.client().do(cmd.Context(), http.MethodGet, "/api/token/v1/balances/"+url.PathEscape(principal), nil, &resp); err != nil {
					return err
				}
				return printJSON(cmd, resp)
			},
		},
		&cobra.Command{
			Use:   "approve <spender> <amount>",
			Short: "Allow spender to pull tokens",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := parseAmount(args[1])
				if err != nil {
					return err
				}
				var resp daohttp.TokenAllowanceResponse
				if err := flags.client().do(cmd.Context(), http.MethodPost, "/api/token/v1/approvals", daohttp.TokenApproveRequest{Spender: args[0], Amount: amount}, &resp); err != nil {
					return err
				}
				return printJSON(cmd, resp)
			},
		},
		&cobra.Command{
			Use:   "transfer <to> <amount>",
			Short: "Transfer tokens",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := parseAmount(args[1])
				if err != nil {
					return err
				}
				var resp daohttp.TokenBalanceResponse
				if err := flags.client().do(cmd.Context(), http.MethodPost, "/api/token/v1/transfers", daohttp.TokenTransferRequest{To: args[0], Amount: amount}, &resp); err != nil {
					return err
				}
				return printJSON(cmd, resp)
			},
		},
	)
	return cmd
}

func encodeCmd() *cobra.Command {
	var call callFlags
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode an instruction payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			encoded, err := call.encode()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "0x"+hex.EncodeToString(encoded))
			return err
		},
	}
	call.register(cmd)
	_ = cmd.MarkFlagRequired("call")
	return cmd
}

// callFlags collect a function signature and its arguments in order. Address
// and string arguments use --arg-string; integers use --arg-uint.
type callFlags struct {
	signature string
	strings   []string
	uints     []string
}

func (c *callFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.signature, "call", "", `Function signature, e.g. "transfer(address,uint256)"`)
	cmd.Flags().StringArrayVar(&c.strings, "arg-string", nil, "Address or string argument (repeatable)")
	cmd.Flags().StringArrayVar(&c.uints, "arg-uint", nil, "Unsigned integer argument (repeatable)")
}

// encode places string arguments first, then integers, which matches the
// (address,uint256) shape of the token instructions.
func (c *callFlags) encode() ([]byte, error) {
	words := make([][abi.WordSize]byte, 0, len(c.strings)+len(c.uints))
	for _, value := range c.strings {
		word, err := abi.StringWord(value)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	for _, raw := range c.uints {
		value, err := parseAmount(raw)
		if err != nil {
			return nil, err
		}
		words = append(words, abi.Uint64Word(value))
	}
	return abi.EncodeCall(c.signature, words...), nil
}

func parseAmount(raw string) (uint64, error) {
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an unsigned integer", raw)
	}
	return value, nil
}

func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func envOr(name string, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}
