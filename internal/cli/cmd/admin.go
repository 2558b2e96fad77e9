package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cardfeed/backend/internal/cli/logger"
	"github.com/cardfeed/backend/internal/cli/prompter"
	"github.com/cardfeed/backend/internal/dto"
	"github.com/cardfeed/backend/internal/models"
)

var (
	broadcastAll         bool
	broadcastUsers       []string
	broadcastCategory    string
	broadcastDescription string
	broadcastLink        string

	adminLimit  int
	adminOffset int
	userSearch  string

	retractYes bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin commands",
	Long:  "Administrative and moderation commands (admin-only)",
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		stats, err := c.Stats(commandContext(cmd))
		if err != nil {
			return err
		}
		fields := [][2]string{
			{"Users", strconv.FormatInt(stats.Users, 10)},
			{"Admins", strconv.FormatInt(stats.Admins, 10)},
			{"Blocked", strconv.FormatInt(stats.Blocked, 10)},
			{"Posts", strconv.FormatInt(stats.Posts, 10)},
			{"Notifications", strconv.FormatInt(stats.Notifications, 10)},
			{"Announcements", strconv.FormatInt(stats.Announcements, 10)},
		}
		for _, cat := range stats.Categories {
			fields = append(fields, [2]string{"  " + cat.Category, strconv.FormatInt(cat.Count, 10)})
		}
		return printer(cmd).Object(stats, fields)
	},
}

var adminBroadcastCmd = &cobra.Command{
	Use:   "broadcast <title>",
	Short: "Send an announcement",
	Long: `Send an announcement notification. Pick exactly one audience:
  --all              every user
  --users id,id,...  the listed users
  --category slug    every author who posted in the category`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := broadcastRequest(args[0])
		if err != nil {
			return err
		}
		c, err := authedClient()
		if err != nil {
			return err
		}
		summary, err := c.Broadcast(commandContext(cmd), req)
		if err != nil {
			return err
		}
		logger.Info("Broadcast sent", "broadcast_id", summary.BroadcastID, "status", summary.Status)

		p := printer(cmd)
		if err := p.Object(summary, [][2]string{
			{"Broadcast", summary.BroadcastID},
			{"Status", string(summary.Status)},
			{"Targeted", strconv.Itoa(summary.TotalTargeted)},
			{"Delivered", strconv.Itoa(summary.SuccessCount)},
			{"Failed", strconv.Itoa(summary.ErrorCount)},
		}); err != nil {
			return err
		}
		if !summary.Logged {
			p.Warning("delivered, but the announcement log entry was not written")
		}
		return nil
	},
}

// broadcastRequest builds the request from the audience flags
func broadcastRequest(title string) (dto.BroadcastRequest, error) {
	req := dto.BroadcastRequest{Title: title, Description: broadcastDescription, Link: broadcastLink}
	modes := 0
	if broadcastAll {
		modes++
		req.TargetMode = string(models.TargetAll)
	}
	if len(broadcastUsers) > 0 {
		modes++
		req.TargetMode = string(models.TargetSpecific)
		req.UserIDs = broadcastUsers
	}
	if broadcastCategory != "" {
		modes++
		req.TargetMode = string(models.TargetCategory)
		req.Category = broadcastCategory
	}
	if modes != 1 {
		return req, fmt.Errorf("pick exactly one of --all, --users or --category")
	}
	return req, nil
}

var adminAnnouncementsCmd = &cobra.Command{
	Use:   "announcements",
	Short: "Browse and retract past announcements",
}

var adminAnnouncementsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the announcement log, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		page, err := c.Announcements(commandContext(cmd), adminLimit, adminOffset)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(page.Items))
		for _, a := range page.Items {
			rows = append(rows, []string{
				a.ID,
				a.Title,
				audience(a),
				fmt.Sprintf("%d/%d", a.SuccessCount, a.TotalTargeted),
				string(a.Status),
				a.CreatedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		return printer(cmd).Table(page, []string{"ID", "TITLE", "AUDIENCE", "DELIVERED", "STATUS", "SENT"}, rows)
	},
}

var adminAnnouncementsRetractCmd = &cobra.Command{
	Use:   "retract <broadcast-id>",
	Short: "Delete every notification an announcement delivered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !retractYes {
			ok, err := prompter.PromptConfirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Delete every notification from "+args[0]+"?")
			if err != nil {
				return err
			}
			if !ok {
				printer(cmd).Info("Cancelled.")
				return nil
			}
		}
		c, err := authedClient()
		if err != nil {
			return err
		}
		count, err := c.Retract(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		printer(cmd).Success("Removed %d notifications", count)
		return nil
	},
}

func audience(a models.Announcement) string {
	switch a.TargetMode {
	case models.TargetSpecific:
		return fmt.Sprintf("%d users", len(a.TargetUserIDs))
	case models.TargetCategory:
		return "category:" + a.Category
	}
	return string(a.TargetMode)
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Moderate user accounts",
}

var adminUsersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List or search users",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		page, err := c.Users(commandContext(cmd), userSearch, adminLimit, adminOffset)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(page.Items))
		for _, u := range page.Items {
			state := "active"
			if u.IsBlocked {
				state = "blocked"
			}
			rows = append(rows, []string{u.ID, u.DisplayName, u.Email, u.Role, state})
		}
		return printer(cmd).Table(page, []string{"ID", "NAME", "EMAIL", "ROLE", "STATE"}, rows)
	},
}

func setBlockedCmd(use, short string, blocked bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient()
			if err != nil {
				return err
			}
			user, err := c.SetBlocked(commandContext(cmd), args[0], blocked)
			if err != nil {
				return err
			}
			if blocked {
				printer(cmd).Success("Blocked %s (%s)", user.DisplayName, user.Email)
			} else {
				printer(cmd).Success("Unblocked %s (%s)", user.DisplayName, user.Email)
			}
			return nil
		},
	}
}

var adminUsersRoleCmd = &cobra.Command{
	Use:   "role <user-id> <user|admin>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		user, err := c.SetRole(commandContext(cmd), args[0], models.Role(args[1]))
		if err != nil {
			return err
		}
		printer(cmd).Success("%s is now %s", user.DisplayName, user.Role)
		return nil
	},
}

func init() {
	adminBroadcastCmd.Flags().BoolVar(&broadcastAll, "all", false, "Send to every user")
	adminBroadcastCmd.Flags().StringSliceVar(&broadcastUsers, "users", nil, "Send to these user ids")
	adminBroadcastCmd.Flags().StringVar(&broadcastCategory, "category", "", "Send to authors who posted in this category")
	adminBroadcastCmd.Flags().StringVarP(&broadcastDescription, "description", "d", "", "Announcement body")
	adminBroadcastCmd.Flags().StringVar(&broadcastLink, "link", "", "URL opened from the notification")

	for _, c := range []*cobra.Command{adminAnnouncementsListCmd, adminUsersListCmd} {
		c.Flags().IntVar(&adminLimit, "limit", 25, "Page size")
		c.Flags().IntVar(&adminOffset, "offset", 0, "Items to skip")
	}
	adminUsersListCmd.Flags().StringVarP(&userSearch, "search", "q", "", "Match email or name")
	adminAnnouncementsRetractCmd.Flags().BoolVarP(&retractYes, "yes", "y", false, "Skip the confirmation prompt")

	adminAnnouncementsCmd.AddCommand(adminAnnouncementsListCmd)
	adminAnnouncementsCmd.AddCommand(adminAnnouncementsRetractCmd)

	adminUsersCmd.AddCommand(adminUsersListCmd)
	adminUsersCmd.AddCommand(setBlockedCmd("block", "Block a user from signing in", true))
	adminUsersCmd.AddCommand(setBlockedCmd("unblock", "Restore a blocked user", false))
	adminUsersCmd.AddCommand(adminUsersRoleCmd)

	adminCmd.AddCommand(adminStatsCmd)
	adminCmd.AddCommand(adminBroadcastCmd)
	adminCmd.AddCommand(adminAnnouncementsCmd)
	adminCmd.AddCommand(adminUsersCmd)
}
