// internal/infra/telegram/log_callback_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"nutrition_goal_bot/internal/app"
	"nutrition_goal_bot/internal/domain/user"
	idb "nutrition_goal_bot/internal/infra/database"

	"gopkg.in/telebot.v3"
)

// RegisterQuickLogHandlers wires the inline quick-log buttons attached to
// reminders: one tap records the log and re-evaluates today's goals.
func RegisterQuickLogHandlers(ctx context.Context, b *telebot.Bot, goalService *app.GoalService, userRepo user.Repository) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := strings.TrimPrefix(c.Callback().Data, "\f")

		u, err := userRepo.GetByTelegramID(ctx, c.Sender().ID)
		if err != nil {
			if err == idb.ErrUserNotFound {
				return c.Respond(&telebot.CallbackResponse{Text: "등록되지 않은 사용자예요."})
			}
			c.Bot().OnError(fmt.Errorf("error resolving user for callback %q: %w", data, err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "오류가 발생했어요. 잠시 후 다시 시도해 주세요."})
		}

		if strings.HasPrefix(data, "log_water_") {
			mlStr := strings.TrimPrefix(data, "log_water_")
			ml, err := strconv.Atoi(mlStr)
			if err != nil {
				c.Bot().OnError(fmt.Errorf("invalid water amount %q in callback: %w", mlStr, err), c)
				return c.Respond(&telebot.CallbackResponse{Text: "잘못된 요청이에요."})
			}

			progress, err := goalService.LogWater(ctx, u.ID, ml)
			if err != nil {
				c.Bot().OnError(fmt.Errorf("error logging water for user %s: %w", u.ID, err), c)
				return c.Respond(&telebot.CallbackResponse{Text: "기록에 실패했어요. 다시 시도해 주세요."})
			}
			return c.Respond(&telebot.CallbackResponse{
				Text: fmt.Sprintf("기록했어요! 오늘 %dml / %dml", progress.WaterML, progress.WaterGoal),
			})
		}

		if data == "log_mission" {
			progress, err := goalService.LogMission(ctx, u.ID)
			if err != nil {
				c.Bot().OnError(fmt.Errorf("error logging mission for user %s: %w", u.ID, err), c)
				return c.Respond(&telebot.CallbackResponse{Text: "기록에 실패했어요. 다시 시도해 주세요."})
			}
			return c.Respond(&telebot.CallbackResponse{
				Text: fmt.Sprintf("수고하셨어요! 오늘 미션 %d / %d", progress.MissionsDone, progress.MissionGoal),
			})
		}

		// Unhandled callbacks fall through here.
		c.Bot().OnError(fmt.Errorf("unhandled callback data: %s", data), c)
		return c.Respond(&telebot.CallbackResponse{Text: "알 수 없는 동작이에요."})
	})
}
