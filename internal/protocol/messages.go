package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        string `json:"player_id"`
	PlayerName      string `json:"player_name"`
	Op              bool   `json:"op,omitempty"`
	GameMode        string `json:"game_mode,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        string `json:"player_id"`
	Balance         int    `json:"balance"`
	ResourcePackURL string `json:"resource_pack_url,omitempty"`
	TickRateHz      int    `json:"tick_rate_hz"`
}

// INTERACT (client -> server): one host event to rule on.
type InteractMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Event           Event  `json:"event"`
}

// Event kinds.
const (
	EventSignInteract      = "SIGN_INTERACT"
	EventSignChange        = "SIGN_CHANGE"
	EventContainerClick    = "CONTAINER_CLICK"
	EventContainerDrag     = "CONTAINER_DRAG"
	EventItemMove          = "ITEM_MOVE"
	EventBlockBreak        = "BLOCK_BREAK"
	EventEnvironmentDamage = "ENVIRONMENT_DAMAGE"
	EventPistonMove        = "PISTON_MOVE"
	EventBlockPlace        = "BLOCK_PLACE"
	EventItemConsume       = "ITEM_CONSUME"
	EventFurnaceSmelt      = "FURNACE_SMELT"
	EventPlaceHead         = "PLACE_HEAD"
	EventCommand           = "COMMAND"
	EventCraft             = "CRAFT"
)

// Click actions.
const (
	ActionLeftClick  = "LEFT_CLICK"
	ActionRightClick = "RIGHT_CLICK"
)

type Event struct {
	Kind  string `json:"kind"`
	World string `json:"world,omitempty"`
	Pos   [3]int `json:"pos"`

	Action string   `json:"action,omitempty"`
	Item   *ItemDTO `json:"item,omitempty"`
	Cursor *ItemDTO `json:"cursor,omitempty"`

	// CONTAINER_CLICK / CONTAINER_DRAG
	TopClicked bool        `json:"top_clicked,omitempty"`
	Shift      bool        `json:"shift,omitempty"`
	Slots      []int       `json:"slots,omitempty"`
	TopSize    int         `json:"top_size,omitempty"`
	Writes     []SlotWrite `json:"writes,omitempty"`

	// SIGN_CHANGE
	Lines []string `json:"lines,omitempty"`

	// BLOCK_PLACE
	Material string `json:"material,omitempty"`
	Facing   string `json:"facing,omitempty"`
	Size     int    `json:"size,omitempty"`

	// ITEM_MOVE
	Src *[3]int `json:"src,omitempty"`
	Dst *[3]int `json:"dst,omitempty"`

	// ENVIRONMENT_DAMAGE / PISTON_MOVE
	Blocks [][3]int `json:"blocks,omitempty"`

	// COMMAND
	Command string `json:"command,omitempty"`

	// CRAFT: 3 rows of 3 materials, "" for an empty cell.
	Grid [][]string `json:"grid,omitempty"`
}

type ItemDTO struct {
	Material string            `json:"material"`
	Amount   int               `json:"amount"`
	Name     string            `json:"name,omitempty"`
	Texture  string            `json:"texture,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// SlotWrite is the host's own handling of an allowed click: the slot content
// after the click. A nil item empties the slot.
type SlotWrite struct {
	Slot int      `json:"slot"`
	Item *ItemDTO `json:"item,omitempty"`
}

// Verdicts.
const (
	VerdictAllow    = "ALLOW"
	VerdictDeny     = "DENY"
	VerdictDeferred = "DEFERRED"
)

// RESULT (server -> client)
type ResultMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Ref             string   `json:"ref"`
	Verdict         string   `json:"verdict"`
	Code            string   `json:"code,omitempty"`
	Message         string   `json:"message,omitempty"`
	Survivors       [][3]int `json:"survivors,omitempty"`
	ResourcePackURL string   `json:"resource_pack_url,omitempty"`
	// Item is the crafting result the host hands out.
	Item *ItemDTO `json:"item,omitempty"`
}

// NOTICE (server -> client): unsolicited text for the player.
type NoticeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Message         string `json:"message"`
}
