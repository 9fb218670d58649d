/*
Copyright 2024 Tim St. Pierre
HD44780 instruction set
*/
package hd44780

const (
	// Commands
	CMD_Clear_Display        = 0x01
	CMD_Return_Home          = 0x02
	CMD_Entry_Mode           = 0x04
	CMD_Display_Control      = 0x08
	CMD_Cursor_Display_Shift = 0x10
	CMD_Function_Set         = 0x20
	CMD_CGRAM_Set            = 0x40
	CMD_DDRAM_Set            = 0x80

	// Options
	OPT_Increment      = 0x02 // CMD_Entry_Mode
	OPT_Entry_Shift    = 0x01 // CMD_Entry_Mode
	OPT_Enable_Display = 0x04 // CMD_Display_Control
	OPT_Enable_Cursor  = 0x02 // CMD_Display_Control
	OPT_Enable_Blink   = 0x01 // CMD_Display_Control
	OPT_Display_Shift  = 0x08 // CMD_Cursor_Display_Shift
	OPT_Shift_Right    = 0x04 // CMD_Cursor_Display_Shift 0 = Left
	OPT_8Bit_Mode      = 0x10 // CMD_Function_Set 0 = 4 bit
	OPT_2_Lines        = 0x08 // CMD_Function_Set 0 = 1 line
	OPT_5x10_Dots      = 0x04 // CMD_Function_Set 0 = 5x8 dots

	// Entry modes
	Entry_Dec       = CMD_Entry_Mode
	Entry_Dec_Shift = CMD_Entry_Mode | OPT_Entry_Shift
	Entry_Inc       = CMD_Entry_Mode | OPT_Increment
	Entry_Inc_Shift = CMD_Entry_Mode | OPT_Increment | OPT_Entry_Shift

	// Display control
	Disp_Off          = CMD_Display_Control
	Disp_On           = CMD_Display_Control | OPT_Enable_Display
	Disp_On_Blink     = Disp_On | OPT_Enable_Blink
	Disp_On_Cursor    = Disp_On | OPT_Enable_Cursor
	Disp_On_Cur_Blink = Disp_On | OPT_Enable_Cursor | OPT_Enable_Blink

	// Cursor and display moves
	Move_Cursor_Left  = CMD_Cursor_Display_Shift
	Move_Cursor_Right = CMD_Cursor_Display_Shift | OPT_Shift_Right
	Move_Disp_Left    = CMD_Cursor_Display_Shift | OPT_Display_Shift
	Move_Disp_Right   = CMD_Cursor_Display_Shift | OPT_Display_Shift | OPT_Shift_Right

	// Function set
	Function_4Bit_1Line  = CMD_Function_Set
	Function_4Bit_2Lines = CMD_Function_Set | OPT_2_Lines
	Function_8Bit_1Line  = CMD_Function_Set | OPT_8Bit_Mode
	Function_8Bit_2Lines = CMD_Function_Set | OPT_8Bit_Mode | OPT_2_Lines
)

// functionSet composes the function-set byte for the configured bus.
func (o *Opts) functionSet() byte {
	option := byte(CMD_Function_Set)
	if o.Width == Bus8Bit {
		option |= OPT_8Bit_Mode
	}
	if o.Lines > 1 {
		option |= OPT_2_Lines
	}
	if o.Font5x10 {
		option |= OPT_5x10_Dots
	}
	return option
}
