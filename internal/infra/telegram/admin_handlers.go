package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"nutrition_goal_bot/internal/app"
	"nutrition_goal_bot/internal/domain/user"
	idb "nutrition_goal_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers handlers for caregiver admin commands.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/add_user", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_user",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("이 명령어를 사용할 권한이 없어요.")
		}

		args := c.Args()
		// Expected format: /add_user <TelegramID> <닉네임>
		if len(args) != 2 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("사용법: /add_user <TelegramID> <닉네임>")
		}

		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Telegram ID는 숫자여야 해요.")
		}

		nickname := strings.TrimSpace(args[1])
		if nickname == "" {
			return c.Send("닉네임은 비워둘 수 없어요.")
		}

		handlerLogger = handlerLogger.WithFields(logrus.Fields{
			"user_telegram_id": telegramID,
			"nickname":         nickname,
		})

		newUser, err := adminService.AddUser(ctx, c.Sender().ID, telegramID, nickname)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case app.ErrAdminNotAuthorized:
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send("이 명령어를 사용할 권한이 없어요.")
			case app.ErrUserAlreadyExists:
				logWithError.Warn("User already exists")
				return c.Send(fmt.Sprintf("Telegram ID %d 사용자는 이미 등록되어 있어요.", telegramID))
			default:
				logWithError.Error("Failed to add user")
				return c.Send(fmt.Sprintf("사용자 등록 중 오류가 발생했어요: %s", err.Error()))
			}
		}

		handlerLogger.WithField("new_user_id", newUser.ID).Info("User added successfully")
		return c.Send(fmt.Sprintf("%s님(ID: %d)을 등록했어요. 하루 목표: %dkcal / %dml / 미션 %d개",
			newUser.Nickname, newUser.TelegramID, newUser.CalorieGoalKcal, newUser.WaterGoalML, newUser.MissionGoal))
	})

	b.Handle("/remove_user", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/remove_user",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("이 명령어를 사용할 권한이 없어요.")
		}

		args := c.Args()
		// Expected format: /remove_user <TelegramID>
		if len(args) != 1 {
			return c.Send("사용법: /remove_user <TelegramID>")
		}

		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid Telegram ID format")
			return c.Send("Telegram ID는 숫자여야 해요.")
		}
		handlerLogger = handlerLogger.WithField("user_telegram_id", telegramID)

		removed, err := adminService.RemoveUser(ctx, c.Sender().ID, telegramID)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case app.ErrAdminNotAuthorized:
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send("이 명령어를 사용할 권한이 없어요.")
			case idb.ErrUserNotFound:
				logWithError.Warn("User to remove not found")
				return c.Send(fmt.Sprintf("Telegram ID %d 사용자를 찾을 수 없어요.", telegramID))
			case app.ErrUserAlreadyInactive:
				logWithError.Warn("User already inactive")
				return c.Send(fmt.Sprintf("Telegram ID %d 사용자는 이미 비활성화되어 있어요.", telegramID))
			default:
				logWithError.Error("Failed to remove user")
				return c.Send(fmt.Sprintf("사용자 비활성화 중 오류가 발생했어요: %s", err.Error()))
			}
		}

		handlerLogger.WithField("removed_user_id", removed.ID).Info("User deactivated successfully")
		return c.Send(fmt.Sprintf("%s님(ID: %d)을 비활성화했어요. 기록은 그대로 보관돼요.", removed.Nickname, removed.TelegramID))
	})

	b.Handle("/set_goals", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/set_goals",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("이 명령어를 사용할 권한이 없어요.")
		}

		args := c.Args()
		// Expected format: /set_goals <TelegramID> <kcal> <ml> <미션수>
		if len(args) != 4 {
			return c.Send("사용법: /set_goals <TelegramID> <kcal> <ml> <미션수>")
		}

		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Telegram ID는 숫자여야 해요.")
		}
		kcal, err1 := strconv.Atoi(args[1])
		ml, err2 := strconv.Atoi(args[2])
		missions, err3 := strconv.Atoi(args[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return c.Send("목표값은 모두 숫자여야 해요.")
		}

		updated, err := adminService.SetGoals(ctx, c.Sender().ID, telegramID, kcal, ml, missions)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case app.ErrAdminNotAuthorized:
				return c.Send("이 명령어를 사용할 권한이 없어요.")
			case idb.ErrUserNotFound:
				logWithError.Warn("User for goal update not found")
				return c.Send(fmt.Sprintf("Telegram ID %d 사용자를 찾을 수 없어요.", telegramID))
			case app.ErrInvalidAmount:
				return c.Send("목표값은 모두 0보다 커야 해요.")
			default:
				logWithError.Error("Failed to update goals")
				return c.Send(fmt.Sprintf("목표 변경 중 오류가 발생했어요: %s", err.Error()))
			}
		}

		handlerLogger.WithField("user_id", updated.ID).Info("Goals updated successfully")
		return c.Send(fmt.Sprintf("%s님의 하루 목표를 변경했어요: %dkcal / %dml / 미션 %d개",
			updated.Nickname, updated.CalorieGoalKcal, updated.WaterGoalML, updated.MissionGoal))
	})

	b.Handle("/list_users", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/list_users",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("이 명령어를 사용할 권한이 없어요.")
		}

		args := c.Args()
		listType := "active"
		if len(args) > 0 {
			listType = strings.ToLower(args[0])
		}
		handlerLogger = handlerLogger.WithField("list_type", listType)

		var usersList []*user.User
		var err error
		var title string

		switch listType {
		case "active":
			title = "활성 사용자"
			usersList, err = adminService.ListActiveUsers(ctx, c.Sender().ID)
		case "all":
			title = "전체 사용자"
			usersList, err = adminService.ListAllUsers(ctx, c.Sender().ID)
		default:
			handlerLogger.Warn("Invalid list type argument")
			return c.Send("'active' 또는 'all'을 입력하거나 비워두세요.")
		}

		if err != nil {
			logWithError := handlerLogger.WithError(err)
			if err == app.ErrAdminNotAuthorized {
				return c.Send("이 명령어를 사용할 권한이 없어요.")
			}
			logWithError.Error("Failed to get list of users")
			return c.Send(fmt.Sprintf("사용자 목록을 불러오지 못했어요: %s", err.Error()))
		}

		if len(usersList) == 0 {
			handlerLogger.Info("No users found for the specified list type")
			return c.Send("등록된 사용자가 없어요.")
		}

		handlerLogger.WithField("user_count", len(usersList)).Info("Successfully retrieved user list")

		var response strings.Builder
		response.WriteString(fmt.Sprintf("--- %s ---\n", title))
		for _, u := range usersList {
			status := "비활성"
			if u.IsActive {
				status = "활성"
			}
			response.WriteString(fmt.Sprintf("%s | Telegram ID: %d | 목표: %dkcal/%dml/미션%d | %s\n",
				u.Nickname, u.TelegramID, u.CalorieGoalKcal, u.WaterGoalML, u.MissionGoal, status))
		}
		return c.Send(response.String())
	})
}
