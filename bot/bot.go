package bot

import (
	"fmt"
	"log"
	"time"

	"logibot/accred"
	"logibot/calendar"
	"logibot/config"
	"logibot/relay"
	"logibot/truffe"

	"gopkg.in/telebot.v3"
	"gorm.io/gorm"
)

const reservationMenuMessage = "Choisissez une réservation:"

// Required tier per command. /start is ungated: it is how users register.
var commandTiers = map[string]accred.Tier{
	"/forget":        accred.External,
	"/help":          accred.External,
	"/contact":       accred.External,
	"/join":          accred.External,
	"/reservations":  accred.TeamMember,
	"/pdf":           accred.TeamMember,
	"/calendar":      accred.TeamLeader,
	"/clearcalendar": accred.TeamLeader,
}

type Bot struct {
	B        *telebot.Bot
	DB       *gorm.DB
	Accred   *accred.Engine
	Client   *truffe.Client
	Cache    *truffe.Cache
	Bridge   *relay.Bridge
	Calendar *calendar.Manager

	supportChatID int64
}

func NewBot(cfg *config.Config, db *gorm.DB) (*Bot, error) {
	pref := telebot.Settings{
		Token:  cfg.BotToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := telebot.NewBot(pref)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.DisplayTimezone, err)
	}

	client := truffe.NewClient(cfg.TruffeBaseURL, cfg.TruffeToken)
	gateway := calendar.NewHTTPGateway(cfg.CalendarBaseURL, cfg.CalendarID, cfg.CalendarToken)

	bot := &Bot{
		B:             b,
		DB:            db,
		Accred:        accred.NewEngine(db),
		Client:        client,
		Cache:         truffe.NewCache(client, cfg.TruffeBaseURL, loc),
		Calendar:      calendar.NewManager(db, gateway, cfg.DisplayTimezone),
		supportChatID: cfg.SupportChatID,
	}
	bot.Bridge = relay.NewBridge(db, bot)

	bot.registerHandlers()
	return bot, nil
}

func (bot *Bot) Start() {
	bot.B.Start()
}

func (bot *Bot) registerHandlers() {
	// Commands
	bot.B.Handle("/start", bot.handleStart)
	bot.B.Handle("/forget", bot.handleForget)
	bot.B.Handle("/help", bot.handleHelp)
	bot.B.Handle("/contact", bot.handleContact)
	bot.B.Handle("/join", bot.handleJoin)
	bot.B.Handle("/reservations", bot.handleReservations)
	bot.B.Handle("/pdf", bot.handlePDF)
	bot.B.Handle("/calendar", bot.handleCalendar)
	bot.B.Handle("/clearcalendar", bot.handleClearCalendar)

	// Inline button presses
	bot.B.Handle(telebot.OnCallback, bot.handleCallback)

	// Plain text feeds the support relay
	bot.B.Handle(telebot.OnText, bot.handleText)
}

// gate checks the caller against the tier required by a command and
// sends the matching refusal text. Unregistered is never reported as
// merely insufficient.
func (bot *Bot) gate(c telebot.Context, required accred.Tier) bool {
	decision, err := bot.Accred.HasPrivilege(c.Sender().ID, required)
	if err != nil {
		log.Printf("privilege check for user %d: %v", c.Sender().ID, err)
		c.Send("Une erreur est survenue, réessaie plus tard.")
		return false
	}
	switch decision {
	case accred.Unregistered:
		c.Send("You are not registered. Please use /start to get registered.\n" +
			"If it is still not working, please contact us via logistique@agepoly.ch.")
		return false
	case accred.Insufficient:
		c.Send("You don't have the right (anymore ?) to use this command.\n" +
			"If you think this is an error, please contact us using /contact.")
		return false
	}
	return true
}

// --- Command handlers ---

func (bot *Bot) handleStart(c telebot.Context) error {
	sender := c.Sender()
	if err := bot.Accred.Register(sender.ID, sender.FirstName, sender.LastName, sender.Username); err != nil {
		log.Printf("register user %d: %v", sender.ID, err)
		return c.Send("Une erreur est survenue, réessaie plus tard.")
	}
	return c.Send("Hello! I'm the Logistic's helper bot.\n" +
		"Send me /reservations to get the list of your reservations.")
}

func (bot *Bot) handleForget(c telebot.Context) error {
	if !bot.gate(c, commandTiers["/forget"]) {
		return nil
	}
	if err := bot.Accred.Forget(c.Sender().ID); err != nil {
		log.Printf("forget user %d: %v", c.Sender().ID, err)
		return c.Send("Une erreur est survenue, réessaie plus tard.")
	}
	return c.Send("You have been forgotten. You can now use /start to get registered again.")
}

func (bot *Bot) handleHelp(c telebot.Context) error {
	if !bot.gate(c, commandTiers["/help"]) {
		return nil
	}
	text := "Commandes disponibles:\n" +
		"/start - s'enregistrer\n" +
		"/forget - être oublié\n" +
		"/join - demander un rôle\n" +
		"/contact - écrire à l'équipe logistique\n" +
		"/reservations - lister les réservations\n" +
		"/pdf [all] [am|pm] [jour] [old] - recevoir les conventions\n" +
		"/calendar - rafraîchir le calendrier\n" +
		"/clearcalendar - vider le calendrier"
	return c.Send(text)
}

func (bot *Bot) handleContact(c telebot.Context) error {
	if !bot.gate(c, commandTiers["/contact"]) {
		return nil
	}
	return c.Send("Écris ton message ici et il sera transmis à l'équipe logistique. " +
		"Nous te répondrons dans cette conversation.")
}

func (bot *Bot) handleJoin(c telebot.Context) error {
	if !bot.gate(c, commandTiers["/join"]) {
		return nil
	}
	text := "Si tu es un membre d'une équipe ou CdD, tu peux avoir accès à plus de commandes avec ce bot !\n" +
		"Pour cela il faut cliquer sur le bouton le plus bas qui correspond à ton rôle dans l'AGEPoly. " +
		"Ta demande sera ensuite modérée au plus vite !\n" +
		"Si tu n'es pas supposé avoir de droits, merci de choisir 'Externe' pour ne pas nous spammer 😉"
	return c.Send(text, joinKeyboard(c.Sender().ID))
}

func (bot *Bot) handleReservations(c telebot.Context) error {
	if !bot.gate(c, commandTiers["/reservations"]) {
		return nil
	}
	markup, page, err := bot.reservationsMarkup(defaultView())
	if err != nil {
		log.Printf("list reservations: %v", err)
		return c.Send("Impossible de récupérer les réservations pour le moment. 😢")
	}
	return c.Send(fmt.Sprintf("%s (page %d)", reservationMenuMessage, page+1), markup)
}

func (bot *Bot) handleCalendar(c telebot.Context) error {
	if !bot.gate(c, commandTiers["/calendar"]) {
		return nil
	}
	reservations, err := bot.Cache.InStates(truffe.DefaultStates)
	if err == nil {
		err = bot.Calendar.Refresh(reservations)
	}
	if err != nil {
		log.Printf("refresh calendar: %v", err)
		return c.Send("Erreur lors de la mise à jour du calendrier. 😢")
	}
	return c.Send("Le calendrier a été mis à jour! 📅")
}

func (bot *Bot) handleClearCalendar(c telebot.Context) error {
	if !bot.gate(c, commandTiers["/clearcalendar"]) {
		return nil
	}
	if err := bot.Calendar.Clear(); err != nil {
		log.Printf("clear calendar: %v", err)
		return c.Send("Erreur lors du vidage du calendrier. 😢")
	}
	return c.Send("Le calendrier a été vidé! 📅")
}

// --- Scheduled jobs ---

// ExpireAccreds downgrades users whose accreditation expired. Run by the
// scheduler and by the expire_accreds subcommand.
func (bot *Bot) ExpireAccreds() {
	if err := bot.Accred.SweepExpired(time.Now()); err != nil {
		log.Printf("expire accreds: %v", err)
	}
}

// RefreshCalendar rebuilds the shared calendar from the reservation
// list. Run by the scheduler and by the refresh_calendar subcommand.
func (bot *Bot) RefreshCalendar() {
	reservations, err := bot.Cache.InStates(truffe.DefaultStates)
	if err == nil {
		err = bot.Calendar.Refresh(reservations)
	}
	if err != nil {
		log.Printf("refresh calendar: %v", err)
	}
}
