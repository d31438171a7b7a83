package bot

import "github.com/solacelabs/solace/internal/history"

// PersonaPrompt frames every completion request. It is prepended at call
// time and never stored in any session history.
var PersonaPrompt = history.Turn{
	Role: history.RoleSystem,
	Content: "You are a supportive, empathetic AI therapist. You listen attentively and provide helpful, " +
		"gentle, and understanding responses. You are not a medical professional, but you offer " +
		"a comforting presence and coping strategies.",
}

const welcomeText = "Hello! I'm your AI Therapist Bot. I am here to listen and offer supportive responses.\n\n" +
	"You can talk to me about anything on your mind, and I'll do my best to help. " +
	"If you need more detailed instructions, type /help."

const helpText = "Here are some commands you can use:\n\n" +
	"/start - Welcome message.\n" +
	"/help - This help message.\n" +
	"/new - Reset your conversation context.\n\n" +
	"Otherwise, just type your message, and I'll reply!"

const resetText = "Conversation context has been reset. Feel free to start anew!"

const apologyText = "I'm sorry, but I'm having trouble connecting to my brain right now. " +
	"Please try again later."
