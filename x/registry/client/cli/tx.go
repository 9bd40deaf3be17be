package cli

import (
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/openalpha/poolparty/x/registry/types"
)

const flagWatermark = "watermark"

// GetTxCmd returns the transaction commands for the registry module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "registry",
		Short:                      "Registry module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdCreatePool(),
		CmdSetParam(),
		CmdSetOwner(),
		CmdWaivePoolFee(),
	)

	return cmd
}

// CmdCreatePool returns the command to create a pool for a sale identity
func CmdCreatePool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool [identity] [name] [description]",
		Short: "Create a new pool for a sale identity",
		Long: `Create a pool seeded with the registry's current defaults. One pool
per identity.

Examples:
  poolpartyd tx registry create-pool example.sale "Example Sale" "Collective buy into the Example sale" --from alice
  poolpartyd tx registry create-pool example.sale "Example Sale" "..." --watermark 20000000000000000000 --from alice`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			watermark, err := cmd.Flags().GetString(flagWatermark)
			if err != nil {
				return err
			}

			msg := &types.MsgCreatePool{
				Creator:     clientCtx.GetFromAddress().String(),
				Identity:    args[0],
				Name:        args[1],
				Description: args[2],
				Watermark:   watermark,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(flagWatermark, "", "Watermark in wei, overriding the registry default")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetParam returns the command to update one registry default
func CmdSetParam() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-param [name] [value]",
		Short: "Update one registry default (owner only)",
		Long: `Update one registry default. Valid names: fee_percent,
expected_discount_percent, watermark, withdrawal_fee, due_diligence_duration.

Examples:
  poolpartyd tx registry set-param fee_percent 8 --from owner`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgSetParam{
				Owner: clientCtx.GetFromAddress().String(),
				Name:  args[0],
				Value: args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSetOwner returns the command to transfer registry ownership
func CmdSetOwner() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-owner [new-owner]",
		Short: "Transfer registry ownership (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgSetOwner{
				Owner:    clientCtx.GetFromAddress().String(),
				NewOwner: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdWaivePoolFee returns the command to waive a pool's release fee
func CmdWaivePoolFee() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waive-pool-fee [pool-id]",
		Short: "Waive the release fee for one pool (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgWaivePoolFee{
				Owner:  clientCtx.GetFromAddress().String(),
				PoolID: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
