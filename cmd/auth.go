// Package cmd implements the command-line interface for nagare.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/nagare-player/nagare/auth"
	"github.com/nagare-player/nagare/color"
	"github.com/nagare-player/nagare/icon"
	"github.com/nagare-player/nagare/resolve"
	"github.com/nagare-player/nagare/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

// authCmd serves as the parent command for managing media-server credentials.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the media-server API token stored in the system keyring",
}

func init() {
	authCmd.AddCommand(authSetCmd)
}

// authSetCmd stores the media-server API token in the system keyring.
var authSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the media-server API token",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			handleErr(survey.AskOne(&survey.Password{
				Message: "Media-server API token",
			}, &token, survey.WithValidator(survey.Required)))
		}

		handleErr(auth.SetToken(token))
		fmt.Printf("%s token stored\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authDeleteCmd)
}

// authDeleteCmd removes the media-server API token from the system keyring.
var authDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the stored media-server API token",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		fmt.Printf("%s token removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

// authStatusCmd reports whether a token is stored and the server reachable.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the stored token and media-server reachability",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := auth.GetToken(); err != nil {
			fmt.Printf("%s no token stored\n", icon.Get(icon.Fail))
		} else {
			fmt.Printf("%s token present\n", icon.Get(icon.Success))
		}

		resolver, err := resolve.New()
		if err != nil {
			fmt.Printf("%s %v\n", icon.Get(icon.Fail), err)
			return
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := resolver.Ping(ctx); err != nil {
			fmt.Printf("%s server unreachable: %v\n", icon.Get(icon.Fail), err)
			return
		}
		fmt.Printf("%s server reachable at %s\n", icon.Get(icon.Success), style.Fg(color.Cyan)(resolver.BaseURL))
	},
}
