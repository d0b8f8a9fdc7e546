package recommend

import (
	"fmt"
	"strings"

	"github.com/hitoshi/wardrobe/internal/model"
)

// PlanDays は1回の生成で提案する日数。
const PlanDays = 7

// PreviousDay は再生成時に渡される前回プランの1日分。
type PreviousDay struct {
	TopID    int64
	BottomID int64
}

// BuildPrompt は衣類一覧・週平均気温・前回プランから生成用プロンプトを組み立てる。
// averageTemperature が空の場合は "none" とする。都市名は含めない。
func BuildPrompt(wardrobe []*model.ClothingItem, averageTemperature string, previous []PreviousDay) string {
	var b strings.Builder

	b.WriteString("User Wardrobe:\n")
	for _, item := range wardrobe {
		imageURL := item.ImageURL
		if imageURL == "" {
			imageURL = "none"
		}
		fmt.Fprintf(&b, "- id=%d item_type=%q color=%q image_url=%q is_available=%t\n",
			item.ID, item.ItemType, item.Color, imageURL, item.IsAvailable)
	}

	weather := averageTemperature
	if weather == "" {
		weather = "none"
	}
	fmt.Fprintf(&b, "\nAverage Weekly Weather: %s\n", weather)

	fmt.Fprintf(&b, `
Task: Provide a %d-day clothing plan with exactly one top and one bottom per day.
Return a JSON array of %d objects with "date", "top_id" and "bottom_id".
Only use ids listed in the wardrobe above and prefer items where is_available=true.
The weather provided is the average for the whole week; make sure all %d outfits are suitable for these conditions.
`, PlanDays, PlanDays, PlanDays)

	if len(previous) > 0 {
		b.WriteString("\nREGENERATION REQUEST:\nThe user did not like the previous plan:\n")
		for i, d := range previous {
			fmt.Fprintf(&b, "- day %d: top_id=%d bottom_id=%d\n", i+1, d.TopID, d.BottomID)
		}
		b.WriteString("Do not repeat the same top_id and bottom_id pairing on the same day as in the previous plan. " +
			"Mix different items or suggest new combinations instead.\n")
	}

	return b.String()
}
