package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// payCmd — оплата курса. Checkout проходит в браузере по выданной ссылке.
func payCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Buy a course with PayPal or Coinbase",
	}

	paypal := &cobra.Command{
		Use:   "paypal <course-id>",
		Short: "Create a PayPal order and print the approval link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				o, err := a.client.CreatePayPalOrder(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Order %s\nApprove: %s\nThen run: brainboost pay capture %s\n", o.OrderID, o.ApproveURL, o.OrderID)
				return nil
			})
		},
	}

	capture := &cobra.Command{
		Use:   "capture <order-id>",
		Short: "Capture an approved PayPal order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				o, err := a.client.CapturePayPalOrder(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Order %s: %s\n", o.OrderID, o.Status)
				return nil
			})
		},
	}

	coinbase := &cobra.Command{
		Use:   "coinbase <course-id>",
		Short: "Create a Coinbase Commerce charge and print the payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				c, err := a.client.CreateCoinbaseCharge(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Charge %s\nPay: %s\n", c.ChargeID, c.HostedURL)
				return nil
			})
		},
	}

	cmd.AddCommand(paypal, capture, coinbase)
	return cmd
}
