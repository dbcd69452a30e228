package multiplexing

// State 引擎状态
type State int

const (
	// NotStarted 初始状态，事件只入队
	NotStarted State = iota
	// Running 事件入队并分发
	Running
	// Stopped 事件写入缓存
	Stopped
)

// String 返回状态名
func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
