// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"nutrition_goal_bot/internal/app"
	"nutrition_goal_bot/internal/domain/user"
	"nutrition_goal_bot/internal/infra/config"
	idb "nutrition_goal_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterBotCommands wires the commands available to registered seniors:
// logging meals/water/missions and checking today's progress.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig,
	userRepo user.Repository,
	goalService *app.GoalService,
	baseLogger *logrus.Entry,
) {
	commandLogger := baseLogger.WithField("handler_group", "user_commands")

	// resolveUser loads the active registered user behind a sender, or
	// replies with the appropriate guidance and returns nil.
	resolveUser := func(c telebot.Context, logCtx *logrus.Entry) (*user.User, error) {
		u, err := userRepo.GetByTelegramID(ctx, c.Sender().ID)
		if err == idb.ErrUserNotFound {
			logCtx.Info("Unknown sender")
			return nil, c.Send("아직 등록되지 않으셨어요. 보호자(관리자)에게 등록을 요청해 주세요.")
		}
		if err != nil {
			logCtx.WithError(err).Error("Failed to look up sender")
			return nil, c.Send("오류가 발생했어요. 잠시 후 다시 시도해 주세요.")
		}
		if !u.IsActive {
			logCtx.WithField("user_id", u.ID).Info("Inactive user")
			return nil, c.Send("계정이 비활성화되어 있어요. 관리자에게 문의해 주세요.")
		}
		return u, nil
	}

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := commandLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == cfg.AdminTelegramID {
			return c.Send(fmt.Sprintf("안녕하세요, 관리자 %s님! /help 로 명령어를 확인하세요.", c.Sender().FirstName))
		}

		u, err := userRepo.GetByTelegramID(ctx, senderID)
		if err == nil {
			if u.IsActive {
				return c.Send(fmt.Sprintf("안녕하세요, %s님! 식사·물·운동을 기록하면 오늘의 목표 달성을 함께 확인해 드려요. /help 를 눌러보세요.", u.Nickname))
			}
			return c.Send("계정이 비활성화되어 있어요. 관리자에게 문의해 주세요.")
		}
		if err != idb.ErrUserNotFound {
			logCtx.WithError(err).Error("Error checking user status for /start command")
			return c.Send("오류가 발생했어요. 잠시 후 다시 시도해 주세요.")
		}
		return c.Send("안녕하세요! 영양갱 건강 도우미예요. 등록은 보호자(관리자)에게 요청해 주세요.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := commandLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID == cfg.AdminTelegramID {
			var helpText strings.Builder
			helpText.WriteString("관리자 명령어:\n\n")
			helpText.WriteString("`/add_user <TelegramID> <닉네임>`\n - 사용자 등록 (기본 목표로 시작)\n\n")
			helpText.WriteString("`/remove_user <TelegramID>`\n - 사용자 비활성화\n\n")
			helpText.WriteString("`/set_goals <TelegramID> <kcal> <ml> <미션수>`\n - 하루 목표 변경\n\n")
			helpText.WriteString("`/list_users [active|all]`\n - 사용자 목록\n\n")
			helpText.WriteString("`/help`\n - 이 도움말")
			return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}

		return c.Send("사용할 수 있는 명령어예요:\n\n" +
			"/meal <kcal> - 식사 기록 (예: /meal 550)\n" +
			"/water <ml> - 물 기록 (예: /water 250)\n" +
			"/mission - 운동 미션 완료 기록\n" +
			"/today - 오늘의 목표 진행 상황\n\n" +
			"하루의 식사·물·운동 목표를 모두 달성하면 축하 메시지를 보내드려요. 축하는 하루에 한 번만!")
	})

	b.Handle("/meal", func(c telebot.Context) error {
		logCtx := commandLogger.WithField("command", "/meal").WithField("sender_id", c.Sender().ID)
		u, err := resolveUser(c, logCtx)
		if u == nil {
			return err
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("사용법: /meal <kcal>  (예: /meal 550)")
		}
		kcal, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return c.Send("칼로리는 숫자로 입력해 주세요. (예: /meal 550)")
		}

		progress, svcErr := goalService.LogMeal(ctx, u.ID, kcal)
		if svcErr != nil {
			if svcErr == app.ErrInvalidAmount {
				return c.Send("칼로리는 0보다 커야 해요.")
			}
			logCtx.WithError(svcErr).Error("Failed to log meal")
			return c.Send("기록에 실패했어요. 잠시 후 다시 시도해 주세요.")
		}
		return c.Send(progressMessage("식사를 기록했어요!", progress))
	})

	b.Handle("/water", func(c telebot.Context) error {
		logCtx := commandLogger.WithField("command", "/water").WithField("sender_id", c.Sender().ID)
		u, err := resolveUser(c, logCtx)
		if u == nil {
			return err
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("사용법: /water <ml>  (예: /water 250)")
		}
		ml, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return c.Send("물의 양은 숫자로 입력해 주세요. (예: /water 250)")
		}

		progress, svcErr := goalService.LogWater(ctx, u.ID, ml)
		if svcErr != nil {
			if svcErr == app.ErrInvalidAmount {
				return c.Send("물의 양은 0보다 커야 해요.")
			}
			logCtx.WithError(svcErr).Error("Failed to log water")
			return c.Send("기록에 실패했어요. 잠시 후 다시 시도해 주세요.")
		}
		return c.Send(progressMessage("물을 기록했어요!", progress))
	})

	b.Handle("/mission", func(c telebot.Context) error {
		logCtx := commandLogger.WithField("command", "/mission").WithField("sender_id", c.Sender().ID)
		u, err := resolveUser(c, logCtx)
		if u == nil {
			return err
		}

		progress, svcErr := goalService.LogMission(ctx, u.ID)
		if svcErr != nil {
			logCtx.WithError(svcErr).Error("Failed to log mission")
			return c.Send("기록에 실패했어요. 잠시 후 다시 시도해 주세요.")
		}
		return c.Send(progressMessage("운동 미션을 기록했어요!", progress))
	})

	b.Handle("/today", func(c telebot.Context) error {
		logCtx := commandLogger.WithField("command", "/today").WithField("sender_id", c.Sender().ID)
		u, err := resolveUser(c, logCtx)
		if u == nil {
			return err
		}

		progress, svcErr := goalService.CheckUser(ctx, u.ID)
		if svcErr != nil {
			logCtx.WithError(svcErr).Error("Failed to build progress snapshot")
			return c.Send("진행 상황을 불러오지 못했어요. 잠시 후 다시 시도해 주세요.")
		}
		return c.Send(progressMessage("오늘의 진행 상황이에요.", progress))
	})
}

func progressMessage(header string, p *app.DailyProgress) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%s 식사: %d / %d kcal\n", checkMark(p.CaloriesMet()), p.CaloriesKcal, p.CalorieGoal))
	sb.WriteString(fmt.Sprintf("%s 물: %d / %d ml\n", checkMark(p.WaterMet()), p.WaterML, p.WaterGoal))
	sb.WriteString(fmt.Sprintf("%s 운동 미션: %d / %d\n", checkMark(p.MissionsMet()), p.MissionsDone, p.MissionGoal))
	if p.AllMet() {
		sb.WriteString("\n오늘의 목표를 모두 달성했어요! 🎉")
	}
	return sb.String()
}

func checkMark(met bool) string {
	if met {
		return "✅"
	}
	return "⬜"
}
