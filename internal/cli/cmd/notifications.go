package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cardfeed/backend/internal/dto"
	"github.com/cardfeed/backend/internal/models"
)

var (
	notifLimit  int
	notifOffset int
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Notification commands",
	Long:  "View and manage your notification inbox",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		page, err := c.Notifications(commandContext(cmd), notifLimit, notifOffset)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(page.Items))
		for _, n := range page.Items {
			rows = append(rows, []string{n.ID, readMark(n), string(n.Type), summary(n), n.CreatedAt.Local().Format("2006-01-02 15:04")})
		}
		return printer(cmd).Table(page, []string{"ID", "", "TYPE", "WHAT", "WHEN"}, rows)
	},
}

var notificationsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show unread notification count",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		count, err := c.UnreadCount(commandContext(cmd))
		if err != nil {
			return err
		}
		return printer(cmd).Object(dto.CountResponse{Count: count}, [][2]string{{"Unread", strconv.FormatInt(count, 10)}})
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification read",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		count, err := c.MarkAllRead(commandContext(cmd))
		if err != nil {
			return err
		}
		printer(cmd).Success("Marked %d notifications read", count)
		return nil
	},
}

func readMark(n dto.NotificationResponse) string {
	if n.IsRead {
		return " "
	}
	return "●"
}

// summary is the one-line text of a notification
func summary(n dto.NotificationResponse) string {
	if n.Title != "" {
		return n.Title
	}
	verb := map[models.NotificationType]string{
		models.NotificationLike:    "liked",
		models.NotificationComment: "commented on",
	}[n.Type]
	if verb == "" || n.Post == nil {
		return n.Actor.Name + " " + string(n.Type)
	}
	return n.Actor.Name + " " + verb + " " + n.Post.Title
}

func init() {
	notificationsListCmd.Flags().IntVar(&notifLimit, "limit", 20, "Page size")
	notificationsListCmd.Flags().IntVar(&notifOffset, "offset", 0, "Items to skip")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsCountCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
}
