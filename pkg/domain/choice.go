package domain

import "strings"

// Vibe は生成画像の雰囲気です。
type Vibe string

const (
	VibeEnergetic Vibe = "energetic"
	VibeElegant   Vibe = "elegant"
	VibeCool      Vibe = "cool"
)

var vibeLabels = map[Vibe]string{
	VibeEnergetic: "元気",
	VibeElegant:   "上品",
	VibeCool:      "クール",
}

// Label は画面表示用の日本語ラベルを返します。
func (v Vibe) Label() string { return vibeLabels[v] }

// ParseVibe は英語の識別子と日本語ラベルのどちらでも受け付けます。
func ParseVibe(s string) (Vibe, bool) {
	s = strings.TrimSpace(s)
	for v, label := range vibeLabels {
		if strings.EqualFold(s, string(v)) || s == label {
			return v, true
		}
	}
	return "", false
}

// Pose は人物のポーズです。
type Pose string

const (
	PoseWave      Pose = "wave"
	PosePeaceSign Pose = "peace-sign"
	PoseHandOnHip Pose = "hand-on-hip"
)

var poseLabels = map[Pose]string{
	PoseWave:      "手を振る",
	PosePeaceSign: "ピース",
	PoseHandOnHip: "腰に手",
}

func (p Pose) Label() string { return poseLabels[p] }

// ParsePose は英語の識別子と日本語ラベルのどちらでも受け付けます。
func ParsePose(s string) (Pose, bool) {
	s = strings.TrimSpace(s)
	for p, label := range poseLabels {
		if strings.EqualFold(s, string(p)) || s == label {
			return p, true
		}
	}
	return "", false
}

// Decision はレガシー形式の変換に失敗したときの利用者の選択です。
type Decision int

const (
	DecisionAbort Decision = iota
	DecisionProceed
	DecisionRetry
)

func (d Decision) String() string {
	switch d {
	case DecisionProceed:
		return "proceed"
	case DecisionRetry:
		return "retry"
	default:
		return "abort"
	}
}

// ParseDecision は "proceed" / "abort" / "retry" を解釈します。未知の値は Abort です。
func ParseDecision(s string) Decision {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "proceed", "yes", "y":
		return DecisionProceed
	case "retry", "r":
		return DecisionRetry
	default:
		return DecisionAbort
	}
}

// Selection は検証済みのテーマとスタイルの組み合わせです。
type Selection struct {
	Theme string
	Vibe  Vibe
	Pose  Pose
}
