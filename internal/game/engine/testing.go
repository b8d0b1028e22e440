//go:build !production

package engine

// FixedDice 按顺序返回预设点数，用完后重复最后一次
type FixedDice struct {
	Rolls [][2]int
	next  int
}

// NewFixedDice 创建固定骰子
func NewFixedDice(rolls ...[2]int) *FixedDice {
	return &FixedDice{Rolls: rolls}
}

func (d *FixedDice) Roll() (int, int) {
	if len(d.Rolls) == 0 {
		return 1, 1
	}
	i := min(d.next, len(d.Rolls)-1)
	d.next++
	return d.Rolls[i][0], d.Rolls[i][1]
}
