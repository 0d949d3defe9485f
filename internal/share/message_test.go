package share

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Hsiii/MomComePickMeUp/client"
)

func TestRenderDefaultTemplate(t *testing.T) {
	train := client.TrainInfo{
		TrainNo:     "152",
		TrainType:   "自強",
		ArrivalTime: "09:00",
		Delay:       15,
		Status:      client.StatusDelayed,
	}

	got := Render("{adjusted_time}到{dest}", train, "臺北", "臺中")
	assert.Equal(t, "09:15到臺中", got)
}

func TestRenderAllPlaceholders(t *testing.T) {
	train := client.TrainInfo{
		TrainNo:     "152",
		TrainType:   "自強",
		Direction:   1,
		ArrivalTime: "09:00",
		Delay:       0,
		Status:      client.StatusOnTime,
	}

	got := Render("{train_type} {train_no} {direction} {origin}→{dest} {time} {status}", train, "臺北", "臺中")
	assert.Equal(t, "自強 152 Counter-clockwise (Ni) 臺北→臺中 09:00 On Time", got)
}

func TestRenderDelayedStatus(t *testing.T) {
	train := client.TrainInfo{ArrivalTime: "23:50", Delay: 20, Status: client.StatusDelayed}

	got := Render("{status} {adjusted_time}", train, "甲", "乙")
	// midnight rollover stays within HH:mm
	assert.Equal(t, "Delayed 20m 00:10", got)
}

func TestRenderMalformedArrivalPassesThrough(t *testing.T) {
	train := client.TrainInfo{ArrivalTime: "soon", Delay: 5}

	got := Render("{adjusted_time}", train, "甲", "乙")
	assert.Equal(t, "soon", got)
}
