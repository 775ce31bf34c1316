package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"tech2gether/internal/database"
	"tech2gether/pkg/utils"
)

var (
	apiBaseURL  = "http://localhost:3000/api"
	accessToken string
)

type ResponseError struct {
	Message string `json:"message"`
}

var apiServiceBase = func() *resty.Client {
	client := resty.New().
		SetBaseURL(apiBaseURL).
		SetHeader("Accept", "application/json").
		SetError(&ResponseError{}).
		OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				return fmt.Errorf(resp.Error().(*ResponseError).Message)
			}

			return nil
		})

	if accessToken != "" {
		client.SetAuthToken(accessToken)
	}

	return client
}

var rootCmd = &cobra.Command{
	Use:   "tech2gether",
	Short: "Tech2Gether CLI",
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

type registerResponse struct {
	Message string        `json:"message"`
	User    database.User `json:"user"`
	Dev     struct {
		VerificationToken string `json:"verification_token"`
	} `json:"dev"`
}

var userRegisterCmd = &cobra.Command{
	Use:   "register <email> <first_name> <last_name>",
	Short: "Register a new account",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		password := utils.GeneratePassword(12)

		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"email":      args[0],
				"password":   password,
				"first_name": args[1],
				"last_name":  args[2],
			}).
			SetResult(&registerResponse{}).
			Post("/auth/register")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		result := resp.Result().(*registerResponse)

		fmt.Println("User ID  :", result.User.ID)
		fmt.Println("Email    :", result.User.Email)
		fmt.Println("Password :", password)
		if result.Dev.VerificationToken != "" {
			fmt.Println("Verify   :", result.Dev.VerificationToken)
		}
	},
}

var userVerifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Verify an email address",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, err := apiServiceBase().R().
			SetBody(map[string]string{"token": args[0]}).
			Post("/auth/verify-email")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		fmt.Println("Email verified")
	},
}

var userForgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password <email>",
	Short: "Request a password reset email",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, err := apiServiceBase().R().
			SetBody(map[string]string{"email": args[0]}).
			Post("/auth/forgot-password")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		fmt.Println("Reset email requested")
	},
}

type profileResponse struct {
	User database.User `json:"user"`
}

var userProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Get the authenticated user profile",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetResult(&profileResponse{}).
			Get("/auth/profile")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		user := resp.Result().(*profileResponse).User

		fmt.Println("User ID :", user.ID)
		fmt.Println("Email   :", user.Email)
		fmt.Println("Name    :", user.FirstName, user.LastName)
		if user.Pronouns != nil {
			fmt.Println("Pronouns:", *user.Pronouns)
		}
		if user.School != nil {
			fmt.Println("School  :", *user.School)
		}
	},
}

func main() {
	userCmd.AddCommand(userRegisterCmd)
	userCmd.AddCommand(userVerifyCmd)
	userCmd.AddCommand(userForgotPasswordCmd)
	userCmd.AddCommand(userProfileCmd)
	rootCmd.AddCommand(userCmd)

	rootCmd.PersistentFlags().StringVarP(&apiBaseURL, "api", "a", apiBaseURL, "API base URL")
	rootCmd.PersistentFlags().StringVarP(&accessToken, "token", "t", "", "Access token")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
