package vocab

// eventTypes are the event names recognized by the builder.
// Unknown names are still bound; this table only drives diagnostics.
var eventTypes = map[string]bool{}

func init() {
	for _, name := range []string{
		// document / window
		"readystatechange", "fullscreenchange", "fullscreenerror",
		"pointerlockchange", "pointerlockerror", "visibilitychange",
		"resize", "securitypolicyviolation", "selectionchange",

		// focus / form
		"abort", "blur", "focus", "focusin", "focusout", "beforeinput",
		"change", "formdata", "input", "invalid", "reset", "select",
		"selectstart", "submit", "toggle", "close", "cancel",

		// mouse
		"auxclick", "click", "contextmenu", "dblclick", "mousedown",
		"mouseenter", "mouseleave", "mousemove", "mouseout", "mouseover",
		"mouseup", "wheel",

		// keyboard
		"keydown", "keypress", "keyup",

		// clipboard
		"copy", "cut", "paste",

		// drag
		"drag", "dragend", "dragenter", "dragexit", "dragleave",
		"dragover", "dragstart", "drop",

		// media
		"canplay", "canplaythrough", "cuechange", "durationchange",
		"emptied", "ended", "loadeddata", "loadedmetadata", "loadstart",
		"pause", "play", "playing", "progress", "ratechange", "seeked",
		"seeking", "stalled", "suspend", "timeupdate", "volumechange",
		"waiting",

		// load / scroll
		"load", "error", "scroll", "scrollend", "slotchange",

		// pointer / touch
		"pointercancel", "pointerdown", "pointerup", "pointermove",
		"pointerout", "pointerover", "pointerenter", "pointerleave",
		"gotpointercapture", "lostpointercapture",
		"touchstart", "touchmove", "touchend", "touchcancel",

		// animation / transition
		"animationcancel", "animationend", "animationiteration",
		"animationstart", "transitioncancel", "transitionend",
		"transitionrun", "transitionstart",
	} {
		eventTypes[name] = true
	}
}

// IsEventType returns true if name is a recognized event type.
func IsEventType(name string) bool {
	return eventTypes[name]
}
