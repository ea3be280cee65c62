package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"datalens/internal/auth"
)

const (
	authNamespace = "auth"
	sessionKey    = "session"
)

var (
	loginToken   string
	loginRefresh string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the backend session",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an access token for authenticated requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginToken == "" {
			return fmt.Errorf("pass --token")
		}
		tok := &oauth2.Token{AccessToken: loginToken, RefreshToken: loginRefresh}
		bridge.SetSession(tok)
		st.Set(authNamespace, sessionKey, tok)
		fmt.Println("Signed in.")
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		bridge.ClearSession()
		st.Remove(authNamespace, sessionKey)
		fmt.Println("Signed out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session is held",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := bridge.AccessToken(); ok {
			fmt.Println(valueStyle.Render("Signed in."))
		} else {
			fmt.Println(dimStyle.Render("Not signed in."))
		}
		return nil
	},
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the session token once",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := bridge.Token()
		if err != nil {
			return fmt.Errorf("not signed in")
		}
		fresh, err := client.RefreshSession(cmd.Context(), current)
		if err != nil {
			return fmt.Errorf("refresh session: %w", err)
		}
		bridge.SetSession(fresh)
		st.Set(authNamespace, sessionKey, fresh)
		fmt.Println("Session refreshed.")
		return nil
	},
}

// requireAuth mirrors the dashboard's route guard: a protected surface is
// reachable only with a session.
func requireAuth(path string) error {
	_, ok := bridge.AccessToken()
	if redirect := auth.Guard(path, ok); redirect != "" {
		return fmt.Errorf("sign in first: datalens auth login --token <access-token>")
	}
	return nil
}

func init() {
	authLoginCmd.Flags().StringVar(&loginToken, "token", "", "Access token")
	authLoginCmd.Flags().StringVar(&loginRefresh, "refresh-token", "", "Refresh token, if the provider rotates sessions")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)
}
