package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"fridge-chef/internal/metrics"
	"fridge-chef/internal/session"
	"fridge-chef/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const thinkingText = "🧑‍🍳 *Đang suy nghĩ món ngon...*\n(Đầu bếp AI đang xem xét nguyên liệu của bạn)"

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func navRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🧊 Tủ Lạnh", "nav:fridge"),
		tgbotapi.NewInlineKeyboardButtonData("🍳 Công Thức", "nav:recipes"),
		tgbotapi.NewInlineKeyboardButtonData("🛒 Đi Chợ", "nav:shopping"),
	)
}

// renderView renders whichever view the snapshot has selected.
func renderView(snap session.Snapshot) (string, tgbotapi.InlineKeyboardMarkup) {
	switch snap.View {
	case session.ViewRecipes:
		return renderRecipes(snap)
	case session.ViewShopping:
		return renderShopping(snap)
	default:
		return renderFridge(snap)
	}
}

func renderFridge(snap session.Snapshot) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("🧊 *Tủ lạnh có gì?*\n")
	sb.WriteString("Gửi tên nguyên liệu bạn đang có để nhận gợi ý món ngon.\n\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	if snap.ShowSuggestions {
		sb.WriteString("_Gợi ý nhanh:_\n")
		var row []tgbotapi.InlineKeyboardButton
		for i, name := range snap.Suggestions {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("+ "+name, "fr:add:"+strconv.Itoa(i)))
			if len(row) == 3 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	for _, ing := range snap.Ingredients {
		sb.WriteString(fmt.Sprintf("• %s\n", esc(ing.Name)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖ "+ing.Name, "fr:rm:"+ing.ID),
		))
	}

	if snap.CanFindRecipes {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔎 Tìm công thức", "fr:find"),
		))
	}
	rows = append(rows, navRow())
	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderRecipes(snap session.Snapshot) (string, tgbotapi.InlineKeyboardMarkup) {
	rs := snap.Recipes
	if rs == nil || rs.Loading() {
		return thinkingText, tgbotapi.NewInlineKeyboardMarkup(navRow())
	}

	back := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("← Quay lại tủ lạnh", "rc:back"))
	if rs.Error != "" {
		text := fmt.Sprintf("❌ *Úi, có chút trục trặc!*\n%s", esc(rs.Error))
		retry := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Thử lại", "rc:back"))
		return text, tgbotapi.NewInlineKeyboardMarkup(retry, navRow())
	}
	if len(rs.Recipes) == 0 {
		return "_Chưa có công thức nào. Hãy thêm nguyên liệu vào tủ lạnh trước._", tgbotapi.NewInlineKeyboardMarkup(back, navRow())
	}

	var sb strings.Builder
	sb.WriteString("🍳 *Gợi ý cho bạn*\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, r := range rs.Recipes {
		expanded := r.ID == rs.ExpandedID
		sb.WriteString(fmt.Sprintf("*%d. %s* (%s kcal)\n", i+1, esc(r.Name), esc(r.Calories)))
		sb.WriteString(fmt.Sprintf("_%s_\n", esc(r.Description)))
		sb.WriteString(fmt.Sprintf("⏱ %s · %s\n", esc(r.CookingTime), esc(r.Difficulty)))
		if r.HasMissing() {
			sb.WriteString(fmt.Sprintf("🛒 Cần thêm: %s\n", esc(strings.Join(r.MissingIngredients, ", "))))
		}
		if expanded {
			sb.WriteString(fmt.Sprintf("\n*Nguyên liệu có sẵn:* %s\n", esc(strings.Join(r.UsedIngredients, ", "))))
			sb.WriteString("*Cách làm:*\n")
			for j, step := range r.Steps {
				sb.WriteString(fmt.Sprintf("%d. %s\n", j+1, esc(step)))
			}
		}
		sb.WriteString("\n")

		label := fmt.Sprintf("📖 %d. Xem hướng dẫn", i+1)
		if expanded {
			label = fmt.Sprintf("🔼 %d. Thu gọn", i+1)
		}
		row := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, "rc:t:"+strconv.Itoa(i)))
		if r.HasMissing() {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("🛒 Thêm vào đi chợ", "rc:m:"+strconv.Itoa(i)))
		}
		rows = append(rows, row)
	}
	rows = append(rows, back, navRow())
	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderShopping(snap session.Snapshot) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("🛒 *Đi Chợ*\n")
	if snap.ShoppingTotal == 0 {
		sb.WriteString("_Danh sách của bạn đang trống._\nGửi tên món cần mua để thêm vào danh sách.\n")
		return sb.String(), tgbotapi.NewInlineKeyboardMarkup(navRow())
	}
	sb.WriteString(fmt.Sprintf("%d món cần mua (%d đã xong)\n\n", snap.ShoppingTotal, snap.ShoppingCompleted))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, item := range snap.Shopping {
		box := "☐"
		if item.Checked {
			box = "☑"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", box, esc(item.Name)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(box+" "+item.Name, "sh:t:"+item.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", "sh:rm:"+item.ID),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Xoá tất cả", "sh:clear")),
		navRow(),
	)
	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderConfirmClear() (string, tgbotapi.InlineKeyboardMarkup) {
	return esc(shopping.ClearPrompt), tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Đồng ý", "sh:yes"),
			tgbotapi.NewInlineKeyboardButtonData("Huỷ", "sh:no"),
		),
	)
}

func formatMetricsReport(usage []metrics.DailyUsage, health metrics.SysHealth, sessions int) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Sessions: %d\n", sessions))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
