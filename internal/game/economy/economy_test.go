package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartMoney(t *testing.T) {
	t.Parallel()

	p := Params{FixedStartMoney: 200, ReturnRate: 0.01, InterestRate: 0.05}

	tests := []struct {
		name       string
		bank, debt int
		want       int
	}{
		{"no bank no debt", 0, 0, 200},
		{"return rounds up", 1001, 0, 211},
		{"interest rounds down", 0, 119, 195},
		{"both", 20000, 1000, 200 + 200 - 50},
		{"negative bank lowers payout", -1050, 0, 200 - 10},
		{"interest exceeds payout", 0, 10000, -300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StartMoney(p, tt.bank, tt.debt))
		})
	}
}

func TestParams_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())

	p := Default()
	p.InterestRate = -0.1
	assert.Error(t, p.Validate())

	p = Default()
	p.InitialMoney = -1
	assert.Error(t, p.Validate())
}

func TestNetWorth(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1500+200-150, NetWorth(1500, 200, 150))
}
