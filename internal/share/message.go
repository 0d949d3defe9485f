// Package share renders the arrival message sent to a contact.
package share

import (
	"fmt"
	"strings"
	"time"

	"github.com/Hsiii/MomComePickMeUp/client"
)

// NoTrainMessage is shown when no train serves the selected pair anymore today.
const NoTrainMessage = "好像沒車搭了"

// Render expands a message template for one train. Supported placeholders:
// {train_type} {train_no} {direction} {origin} {dest} {time} {adjusted_time}
// {status}. {adjusted_time} is the scheduled arrival shifted by the live
// delay.
func Render(tpl string, train client.TrainInfo, originName, destName string) string {
	status := "On Time"
	if train.Status == client.StatusDelayed {
		status = fmt.Sprintf("Delayed %dm", train.Delay)
	}

	direction := "Clockwise (Shun)"
	if train.Direction == 1 {
		direction = "Counter-clockwise (Ni)"
	}

	return strings.NewReplacer(
		"{train_type}", train.TrainType,
		"{train_no}", train.TrainNo,
		"{direction}", direction,
		"{origin}", originName,
		"{dest}", destName,
		"{time}", train.ArrivalTime,
		"{adjusted_time}", adjustedTime(train.ArrivalTime, train.Delay),
		"{status}", status,
	).Replace(tpl)
}

// adjustedTime shifts an HH:mm arrival by delay minutes. A malformed time is
// returned as-is rather than guessed at.
func adjustedTime(arrival string, delayMin int) string {
	t, err := time.Parse("15:04", arrival)
	if err != nil {
		return arrival
	}
	return t.Add(time.Duration(delayMin) * time.Minute).Format("15:04")
}
