package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/openalpha/poolparty/x/pool/types"
)

// GetTxCmd returns the transaction commands for the pool module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "pool",
		Short:                      "Pool module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdContribute(),
		CmdLeave(),
		CmdKick(),
		CmdSetConfigurator(),
		CmdConfigure(),
		CmdCompleteConfiguration(),
		CmdStartReview(),
		CmdReleaseFunds(),
		CmdClaimFromVendor(),
		CmdClaimRefundFromVendor(),
		CmdClaimTokens(),
		CmdClaimRefund(),
	)

	return cmd
}

// CmdContribute returns the command to contribute funds to a pool
func CmdContribute() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contribute [pool-id] [amount]",
		Short: "Contribute funds to a pool",
		Long: `Contribute funds (in wei) to an open pool.

Examples:
  poolpartyd tx pool contribute pool-1 1000000000000000000 --from alice`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgContribute{
				Contributor: clientCtx.GetFromAddress().String(),
				PoolID:      args[0],
				Amount:      args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdLeave returns the command to withdraw a contribution
func CmdLeave() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave [pool-id]",
		Short: "Withdraw your full contribution from a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgLeave{
				Participant: clientCtx.GetFromAddress().String(),
				PoolID:      args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdKick returns the command to remove a participant during review
func CmdKick() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kick [pool-id] [participant] [reason]",
		Short: "Remove a participant who failed compliance checks",
		Long: `Remove a participant from a pool in review. Reason is 'kyc' or 'other'.

Examples:
  poolpartyd tx pool kick pool-1 cosmos1abc... kyc --from configurator`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			reason := strings.ToLower(args[2])
			if _, err := types.ParseKickReason(reason); err != nil {
				return fmt.Errorf("invalid reason: %s (use 'kyc' or 'other')", args[2])
			}

			msg := &types.MsgKick{
				Configurator: clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
				Participant:  args[1],
				Reason:       reason,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetConfigurator returns the command to bind the pool configurator
func CmdSetConfigurator() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-configurator [pool-id] [configurator]",
		Short: "Bind the identity owner as the pool's configurator",
		Long: `Bind the oracle-resolved identity owner as the only account allowed to
configure the pool. The sender pays the authorization fee.

Examples:
  poolpartyd tx pool set-configurator pool-1 cosmos1abc... --from oracle`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgSetConfigurator{
				Sender:       clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
				Configurator: args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdConfigure returns the command to set the sale-integration configuration
func CmdConfigure() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure [pool-id] [sale-target] [token-denom] [buy-selector] [claim-selector] [refund-selector] [public-price] [group-price]",
		Short: "Set the sale integration for a pool",
		Long: `Set the external sale configuration. Use 'N/A' for a selector the sale
does not implement. Prices are in wei per whole token.

Examples:
  poolpartyd tx pool configure pool-1 cosmos1sale... xyztoken buy claim refund 100 85 --from configurator
  poolpartyd tx pool configure pool-1 cosmos1sale... xyztoken buy N/A N/A 100 85 --subsidy --from configurator`,
		Args: cobra.ExactArgs(8),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			subsidy, err := cmd.Flags().GetBool(flagSubsidy)
			if err != nil {
				return err
			}

			msg := &types.MsgConfigure{
				Configurator:    clientCtx.GetFromAddress().String(),
				PoolID:          args[0],
				SaleTarget:      args[1],
				TokenDenom:      args[2],
				BuySelector:     args[3],
				ClaimSelector:   args[4],
				RefundSelector:  args[5],
				PublicPrice:     args[6],
				GroupPrice:      args[7],
				SubsidyRequired: subsidy,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().Bool(flagSubsidy, false, "The sale charges the public price; the difference is paid as a subsidy at release")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

const flagSubsidy = "subsidy"

// CmdCompleteConfiguration returns the command to lock configuration
func CmdCompleteConfiguration() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete-configuration [pool-id]",
		Short: "Lock the pool configuration and start due diligence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgCompleteConfiguration{
				Configurator: clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdStartReview returns the command to move a pool into review
func CmdStartReview() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-review [pool-id]",
		Short: "Move a pool into review once due diligence has elapsed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgStartReview{
				Configurator: clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdReleaseFunds returns the command to release pooled funds to the sale
func CmdReleaseFunds() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release-funds [pool-id] [attached]",
		Short: "Release pooled funds to the external sale",
		Long: `Release the pool's funds to the configured sale. Attached must equal
subsidy + fee exactly; query 'release-quote' first for the required value.

Examples:
  poolpartyd tx pool release-funds pool-1 3547058823529411764 --from configurator`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgReleaseFunds{
				Configurator: clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
				Attached:     args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClaimFromVendor returns the command to invoke the sale's claim function
func CmdClaimFromVendor() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim-from-vendor [pool-id]",
		Short: "Pull purchased tokens from the external sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgClaimFromVendor{
				Configurator: clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClaimRefundFromVendor returns the command to pull funds back from a
// failed sale
func CmdClaimRefundFromVendor() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim-refund-from-vendor [pool-id]",
		Short: "Pull the pool's funds back from a failed sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgClaimRefundFromVendor{
				Configurator: clientCtx.GetFromAddress().String(),
				PoolID:       args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClaimTokens returns the command to claim a participant's token share
func CmdClaimTokens() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim-tokens [pool-id]",
		Short: "Claim your currently-due share of pool tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgClaimTokens{
				Participant: clientCtx.GetFromAddress().String(),
				PoolID:      args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdClaimRefund returns the command to claim a participant's refund share
func CmdClaimRefund() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim-refund [pool-id]",
		Short: "Claim your share of refunded pool funds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgClaimRefund{
				Participant: clientCtx.GetFromAddress().String(),
				PoolID:      args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
